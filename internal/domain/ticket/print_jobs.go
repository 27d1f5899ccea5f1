package ticket

import (
	"sort"
	"strconv"
	"strings"
)

const (
	printJobSeparator = "#"
	printJobPair      = ":"
)

// DecodePrintJobs parses "printerID:count#printerID:count". Empty segments
// are skipped. Any malformed segment or repeated printer id yields an empty
// map.
func DecodePrintJobs(data string) map[int]int {
	result := make(map[int]int)
	for _, segment := range strings.Split(data, printJobSeparator) {
		if segment == "" {
			continue
		}
		parts := strings.Split(segment, printJobPair)
		if len(parts) != 2 {
			return make(map[int]int)
		}
		id, err := strconv.Atoi(parts[0])
		if err != nil {
			return make(map[int]int)
		}
		count, err := strconv.Atoi(parts[1])
		if err != nil {
			return make(map[int]int)
		}
		if _, dup := result[id]; dup {
			return make(map[int]int)
		}
		result[id] = count
	}
	return result
}

// EncodePrintJobs renders counts ordered by printer id
func EncodePrintJobs(counts map[int]int) string {
	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id)+printJobPair+strconv.Itoa(counts[id]))
	}
	return strings.Join(parts, printJobSeparator)
}
