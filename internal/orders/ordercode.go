package orders

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const orderCodePrefix = "ORD"

// codeForDate renders an order code for the given day and daily sequence,
// e.g. ORD-20260831-0001. The sequence widens past 9999 rather than wrap.
func codeForDate(day time.Time, sequence int) string {
	return fmt.Sprintf("%s-%s-%04d", orderCodePrefix, day.Format("20060102"), sequence)
}

// dayPrefix is the shared prefix of every code issued on the given day.
func dayPrefix(day time.Time) string {
	return fmt.Sprintf("%s-%s-", orderCodePrefix, day.Format("20060102"))
}

// sequenceFromCode extracts the numeric daily sequence from an order code.
// Malformed codes yield 0 so the next issued sequence starts at 1.
func sequenceFromCode(code string) int {
	idx := strings.LastIndex(code, "-")
	if idx < 0 || idx+1 >= len(code) {
		return 0
	}
	seq, err := strconv.Atoi(code[idx+1:])
	if err != nil || seq < 0 {
		return 0
	}
	return seq
}
