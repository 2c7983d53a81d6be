package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMissingKey   = errors.New("missing required key")
	ErrInvalidValue = errors.New("invalid value")
)

// Settings is the flat string keyed strategy configuration. Values are parsed
// once, when the strategy is constructed.
type Settings map[string]string

func (s Settings) String(key string) (string, error) {
	v, ok := s[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingKey, key)
	}

	return strings.TrimSpace(v), nil
}

func (s Settings) Int(key string) (int, error) {
	v, err := s.String(key)
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidValue, key, v)
	}

	return n, nil
}

func (s Settings) Int64(key string) (int64, error) {
	v, err := s.String(key)
	if err != nil {
		return 0, err
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidValue, key, v)
	}

	return n, nil
}

func (s Settings) Float(key string) (float64, error) {
	v, err := s.String(key)
	if err != nil {
		return 0, err
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidValue, key, v)
	}

	return f, nil
}

func (s Settings) Ints(key string) ([]int, error) {
	v, err := s.String(key)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(v, ",")
	res := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q is not an integer list", ErrInvalidValue, key, v)
		}
		res = append(res, n)
	}

	return res, nil
}

func (s Settings) Floats(key string) ([]float64, error) {
	v, err := s.String(key)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(v, ",")
	res := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q is not a number list", ErrInvalidValue, key, v)
		}
		res = append(res, f)
	}

	return res, nil
}

// List splits a value on sep, dropping empty items.
func (s Settings) List(key, sep string) ([]string, error) {
	v, err := s.String(key)
	if err != nil {
		return nil, err
	}

	var res []string
	for _, p := range strings.Split(v, sep) {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}

	return res, nil
}

func (s Settings) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s Settings) StringOr(key, def string) string {
	if _, ok := s[key]; !ok {
		return def
	}

	v, _ := s.String(key)
	return v
}

func (s Settings) IntOr(key string, def int) (int, error) {
	if _, ok := s[key]; !ok {
		return def, nil
	}

	return s.Int(key)
}

func (s Settings) Int64Or(key string, def int64) (int64, error) {
	if _, ok := s[key]; !ok {
		return def, nil
	}

	return s.Int64(key)
}

func (s Settings) FloatOr(key string, def float64) (float64, error) {
	if _, ok := s[key]; !ok {
		return def, nil
	}

	return s.Float(key)
}
