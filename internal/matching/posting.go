package matching

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Capacity is the number of candidates a posting retains after ranking.
// The zero value is Unlimited.
type Capacity struct {
	limit   int
	limited bool
}

// Unlimited returns a capacity that keeps every ranked candidate.
func Unlimited() Capacity {
	return Capacity{}
}

// Limit returns a capacity of n. Negative values are clamped to zero.
func Limit(n int) Capacity {
	if n < 0 {
		n = 0
	}
	return Capacity{limit: n, limited: true}
}

// ParseCapacity parses a capacity cell. Empty means Unlimited. A value that is
// not a positive integer yields Limit(0) together with ErrInvalidCapacity.
func ParseCapacity(s string) (Capacity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unlimited(), nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		// spreadsheets tend to write integers as "3.0"
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return Limit(0), fmt.Errorf("%w: %q is not an integer", ErrInvalidCapacity, s)
		}
		n = int(f)
	}

	if n <= 0 {
		return Limit(0), fmt.Errorf("%w: %d is not positive", ErrInvalidCapacity, n)
	}

	return Limit(n), nil
}

// IsUnlimited reports whether the capacity keeps all candidates.
func (c Capacity) IsUnlimited() bool { return !c.limited }

// Keep returns how many of n ranked entries fit in the capacity.
func (c Capacity) Keep(n int) int {
	if !c.limited || c.limit > n {
		return n
	}
	return c.limit
}

func (c Capacity) String() string {
	if !c.limited {
		return "unlimited"
	}
	return strconv.Itoa(c.limit)
}

// MarshalJSON encodes a limit as a number and Unlimited as "unlimited".
func (c Capacity) MarshalJSON() ([]byte, error) {
	if !c.limited {
		return json.Marshal("unlimited")
	}
	return json.Marshal(c.limit)
}

func (c *Capacity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "unlimited" {
			return fmt.Errorf("%w: %q", ErrInvalidCapacity, s)
		}
		*c = Unlimited()
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidCapacity, data)
	}
	*c = Limit(n)
	return nil
}

// Posting is an internship listing.
type Posting struct {
	ID                    string
	RequiredSkills        SkillSet
	Location              string
	Sector                string
	QualificationRequired string
	Capacity              Capacity
}
