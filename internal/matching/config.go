package matching

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
)

const (
	ProfileWeighted  = "weighted"
	ProfileBasic     = "basic"
	ProfileQualified = "qualified"

	// DefaultProfile is used when no profile is configured.
	DefaultProfile = ProfileWeighted
)

// Config holds the weights of every scoring rule.
type Config struct {
	SkillWeight              float64
	LocationBonus            float64
	SectorBonus              float64
	QualificationBonus       float64
	AffirmativeActionBonus   float64
	PastParticipationPenalty float64
	ReservedCategories       []Category
	// TopN is the default size of the convenience slice of a candidate ranking.
	TopN int
}

func reserved() []Category {
	return []Category{CategorySC, CategoryST, CategoryOBC}
}

var profiles = map[string]func() Config{
	ProfileWeighted: func() Config {
		return Config{
			SkillWeight:              50,
			LocationBonus:            20,
			SectorBonus:              20,
			AffirmativeActionBonus:   10,
			PastParticipationPenalty: 10,
			ReservedCategories:       reserved(),
			TopN:                     3,
		}
	},
	ProfileBasic: func() Config {
		return Config{
			SkillWeight:            1,
			LocationBonus:          1,
			SectorBonus:            1,
			AffirmativeActionBonus: 1,
			ReservedCategories:     reserved(),
			TopN:                   5,
		}
	},
	ProfileQualified: func() Config {
		return Config{
			SkillWeight:            1,
			LocationBonus:          1,
			SectorBonus:            1,
			QualificationBonus:     1,
			AffirmativeActionBonus: 1,
			ReservedCategories:     reserved(),
			TopN:                   5,
		}
	},
}

// Profile returns a copy of the named weight profile.
func Profile(name string) (Config, error) {
	build, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Config{}, fmt.Errorf("%w: %w: %q (known: %s)",
			ErrConfiguration, ErrUnknownProfile, name, strings.Join(ProfileNames(), ", "))
	}
	return build(), nil
}

// ProfileNames returns the registered profile names in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsReserved reports whether the category receives the affirmative-action bonus.
func (c Config) IsReserved(cat Category) bool {
	if cat == CategoryUnknown {
		return false
	}
	return slices.Contains(c.ReservedCategories, cat)
}

// Validate rejects weights that cannot be summed or compared.
// Negative weights and an empty reserved set are valid tuning choices.
func (c Config) Validate() error {
	weights := []struct {
		name  string
		value float64
	}{
		{"skill-weight", c.SkillWeight},
		{"location-bonus", c.LocationBonus},
		{"sector-bonus", c.SectorBonus},
		{"qualification-bonus", c.QualificationBonus},
		{"affirmative-action-bonus", c.AffirmativeActionBonus},
		{"past-participation-penalty", c.PastParticipationPenalty},
	}

	for _, w := range weights {
		if math.IsNaN(w.value) || math.IsInf(w.value, 0) {
			return fmt.Errorf("%w: %s must be a finite number, got %v", ErrConfiguration, w.name, w.value)
		}
	}
	return nil
}

// ProfileSpec is the user-facing form of a Config. Pointer fields distinguish
// a missing key from an explicit zero. Without Base every weight is required.
type ProfileSpec struct {
	Base                     *string   `mapstructure:"base" json:"base,omitempty"`
	SkillWeight              *float64  `mapstructure:"skill-weight" json:"skill-weight,omitempty"`
	LocationBonus            *float64  `mapstructure:"location-bonus" json:"location-bonus,omitempty"`
	SectorBonus              *float64  `mapstructure:"sector-bonus" json:"sector-bonus,omitempty"`
	QualificationBonus       *float64  `mapstructure:"qualification-bonus" json:"qualification-bonus,omitempty"`
	AffirmativeActionBonus   *float64  `mapstructure:"affirmative-action-bonus" json:"affirmative-action-bonus,omitempty"`
	PastParticipationPenalty *float64  `mapstructure:"past-participation-penalty" json:"past-participation-penalty,omitempty"`
	ReservedCategories       *[]string `mapstructure:"reserved-categories" json:"reserved-categories,omitempty"`
	TopN                     *int      `mapstructure:"top" json:"top,omitempty"`
}

// Build resolves the spec into a validated Config.
func (s ProfileSpec) Build() (Config, error) {
	var cfg Config
	var missing []string

	if s.Base != nil {
		base, err := Profile(*s.Base)
		if err != nil {
			return Config{}, err
		}
		cfg = base
	}

	floats := []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"skill-weight", s.SkillWeight, &cfg.SkillWeight},
		{"location-bonus", s.LocationBonus, &cfg.LocationBonus},
		{"sector-bonus", s.SectorBonus, &cfg.SectorBonus},
		{"qualification-bonus", s.QualificationBonus, &cfg.QualificationBonus},
		{"affirmative-action-bonus", s.AffirmativeActionBonus, &cfg.AffirmativeActionBonus},
		{"past-participation-penalty", s.PastParticipationPenalty, &cfg.PastParticipationPenalty},
	}
	for _, f := range floats {
		switch {
		case f.src != nil:
			*f.dst = *f.src
		case s.Base == nil:
			missing = append(missing, f.name)
		}
	}

	switch {
	case s.ReservedCategories != nil:
		cats := make([]Category, 0, len(*s.ReservedCategories))
		for _, raw := range *s.ReservedCategories {
			cat, err := ParseCategory(raw)
			if err != nil {
				return Config{}, fmt.Errorf("%w: reserved-categories: %w", ErrConfiguration, err)
			}
			if cat == CategoryUnknown {
				continue
			}
			cats = append(cats, cat)
		}
		cfg.ReservedCategories = cats
	case s.Base == nil:
		missing = append(missing, "reserved-categories")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: missing required fields: %s", ErrConfiguration, strings.Join(missing, ", "))
	}

	if s.TopN != nil {
		cfg.TopN = *s.TopN
	} else if s.Base == nil {
		cfg.TopN = profiles[DefaultProfile]().TopN
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// IsEmpty reports whether no key of the spec was set.
func (s ProfileSpec) IsEmpty() bool {
	return s == ProfileSpec{}
}
