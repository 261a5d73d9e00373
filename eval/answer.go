package eval

import (
	"regexp"
	"strconv"
	"strings"
)

// integers matches plain and comma-grouped numbers such as 2048 or 20,152.
var integers = regexp.MustCompile(`\d{1,3}(?:,\d{3})+|\d+`)

// Integers returns every integer in text in order of appearance.
func Integers(text string) []int64 {
	var out []int64
	for _, m := range integers.FindAllString(text, -1) {
		v, err := strconv.ParseInt(strings.ReplaceAll(m, ",", ""), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// PickAnswer chooses the reported answer from free text. The first integer
// that some calculator call produced wins; otherwise the first integer.
func PickAnswer(text string, calcResults map[int64]struct{}) (int64, bool) {
	candidates := Integers(text)
	if len(candidates) == 0 {
		return 0, false
	}
	for _, c := range candidates {
		if _, ok := calcResults[c]; ok {
			return c, true
		}
	}
	return candidates[0], true
}
