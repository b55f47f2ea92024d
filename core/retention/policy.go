package retention

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// File is the on-disk TOML shape of a Policy.
type File struct {
	KeepLast      int      `toml:"keep_last"`
	KeepNewerThan string   `toml:"keep_newer_than"`
	KeepTagged    []string `toml:"keep_tagged"`
}

// LoadPolicy reads a policy from a TOML file.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}
	return DecodePolicy(string(data))
}

// DecodePolicy parses a policy from TOML text.
func DecodePolicy(data string) (Policy, error) {
	var f File
	md, err := toml.Decode(data, &f)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to parse policy: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Policy{}, fmt.Errorf("unknown policy key %q", undecoded[0].String())
	}
	return f.Policy()
}

// Policy converts the file form into a Policy.
func (f File) Policy() (Policy, error) {
	if f.KeepLast < 0 {
		return Policy{}, fmt.Errorf("keep_last must not be negative, got %d", f.KeepLast)
	}
	p := Policy{KeepLast: f.KeepLast, KeepTagged: f.KeepTagged}
	if f.KeepNewerThan != "" {
		age, err := ParseAge(f.KeepNewerThan)
		if err != nil {
			return Policy{}, err
		}
		p.KeepNewerThan = age
	}
	return p, nil
}

// ParseAge accepts Go durations ("36h") and whole days ("30d").
func ParseAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid age %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid age %q", s)
	}
	return d, nil
}
