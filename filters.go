package main

import (
	"bufio"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"math/rand/v2"
	"os"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
	"golang.org/x/text/unicode/norm"
)

// Provider is the interface that any column value provider needs to
// fulfil. A provider is built once per schema field with its parameters
// and is then asked for a replacement value for every row.
type Provider interface {
	// ProviderName returns the registered name of the provider
	ProviderName() string
	// Provide returns the replacement for value, which is the current
	// value of the column in row
	Provide(value any, row *Row) (any, error)
}

// Params are the provider specific arguments from the schema
type Params map[string]any

// String returns the string parameter key, or def if it is not set
func (p Params) String(key, def string) (string, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return def, fmt.Errorf("parameter %s must be a string, got %T", key, v)
	}
	return s, nil
}

// Int returns the integer parameter key, or def if it is not set
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case int:
		return n, nil
	}
	return def, fmt.Errorf("parameter %s must be an integer, got %T", key, v)
}

// Bool returns the boolean parameter key, or def if it is not set
func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return def, fmt.Errorf("parameter %s must be a boolean, got %T", key, v)
	}
	return b, nil
}

// textValue returns the text form of a column value, and false for NULL.
// pgx returns uuid columns as [16]byte; these take the usual hyphenated
// form.
func textValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case []byte:
		return string(t), true
	case [16]byte:
		return uuid.UUID(t).String(), true
	case fmt.Stringer:
		return t.String(), true
	default:
		return fmt.Sprint(t), true
	}
}

// SetProvider always returns a fixed value
type SetProvider struct {
	Value any
}

// NewSetProvider makes a new SetProvider from the "value" parameter
func NewSetProvider(_ string, params Params) (Provider, error) {
	v, ok := params["value"]
	if !ok {
		return nil, errors.New("set provider: value parameter is required")
	}
	return &SetProvider{Value: v}, nil
}

// Provide returns the fixed value
func (p *SetProvider) Provide(_ any, _ *Row) (any, error) {
	return p.Value, nil
}

// ProviderName returns "set"
func (p *SetProvider) ProviderName() string { return "set" }

// ClearProvider sets columns to NULL
type ClearProvider struct{}

// NewClearProvider makes a new ClearProvider
func NewClearProvider(_ string, _ Params) (Provider, error) {
	return ClearProvider{}, nil
}

// Provide returns nil
func (ClearProvider) Provide(_ any, _ *Row) (any, error) { return nil, nil }

// ProviderName returns "clear"
func (ClearProvider) ProviderName() string { return "clear" }

// MD5Provider replaces a value with its md5 hash, either as a hex string
// or, if AsNumber is set, as a decimal number of at most Length digits
type MD5Provider struct {
	AsNumber bool
	Length   int
}

// NewMD5Provider makes a new MD5Provider from the "as_number" and
// "as_number_length" parameters
func NewMD5Provider(_ string, params Params) (Provider, error) {
	asNumber, err := params.Bool("as_number", false)
	if err != nil {
		return nil, fmt.Errorf("md5 provider: %w", err)
	}
	length, err := params.Int("as_number_length", 8)
	if err != nil {
		return nil, fmt.Errorf("md5 provider: %w", err)
	}
	if length < 1 || length > 18 {
		return nil, fmt.Errorf("md5 provider: as_number_length must be between 1 and 18, got %d", length)
	}
	return &MD5Provider{AsNumber: asNumber, Length: length}, nil
}

// Provide returns the hash of value; NULL stays NULL
func (p *MD5Provider) Provide(value any, _ *Row) (any, error) {
	s, ok := textValue(value)
	if !ok {
		return nil, nil
	}
	sum := md5.Sum([]byte(s))
	if !p.AsNumber {
		return hex.EncodeToString(sum[:]), nil
	}
	n := new(big.Int).SetBytes(sum[:])
	mod := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(p.Length)), nil)
	return n.Mod(n, mod).Int64(), nil
}

// ProviderName returns "md5"
func (p *MD5Provider) ProviderName() string { return "md5" }

// XXH3Provider replaces a value with its 64 bit xxh3 hash in hex
type XXH3Provider struct{}

// NewXXH3Provider makes a new XXH3Provider
func NewXXH3Provider(_ string, _ Params) (Provider, error) {
	return XXH3Provider{}, nil
}

// Provide returns the hash of value; NULL stays NULL
func (XXH3Provider) Provide(value any, _ *Row) (any, error) {
	s, ok := textValue(value)
	if !ok {
		return nil, nil
	}
	return fmt.Sprintf("%016x", xxh3.HashString(s)), nil
}

// ProviderName returns "xxh3"
func (XXH3Provider) ProviderName() string { return "xxh3" }

// UUIDProvider replaces a value with a new random uuid
type UUIDProvider struct{}

// NewUUIDProvider makes a new UUIDProvider
func NewUUIDProvider(_ string, _ Params) (Provider, error) {
	return UUIDProvider{}, nil
}

// Provide returns a new uuid
func (UUIDProvider) Provide(_ any, _ *Row) (any, error) {
	return uuid.NewString(), nil
}

// ProviderName returns "uuid4"
func (UUIDProvider) ProviderName() string { return "uuid4" }

// ChoiceProvider replaces a value with one picked at random from Values
type ChoiceProvider struct {
	Values []any
}

// NewChoiceProvider makes a new ChoiceProvider from the "values"
// parameter
func NewChoiceProvider(_ string, params Params) (Provider, error) {
	values, ok := params["values"].([]any)
	if !ok || len(values) == 0 {
		return nil, errors.New("choice provider: values must be a non-empty list")
	}
	return &ChoiceProvider{Values: values}, nil
}

// Provide returns a random candidate
func (p *ChoiceProvider) Provide(_ any, _ *Row) (any, error) {
	return p.Values[rand.IntN(len(p.Values))], nil
}

// ProviderName returns "choice"
func (p *ChoiceProvider) ProviderName() string { return "choice" }

// MaskProvider replaces every character of a value with Sign
type MaskProvider struct {
	Sign string
}

// NewMaskProvider makes a new MaskProvider from the "sign" parameter
func NewMaskProvider(_ string, params Params) (Provider, error) {
	sign, err := maskSign(params)
	if err != nil {
		return nil, fmt.Errorf("mask provider: %w", err)
	}
	return &MaskProvider{Sign: sign}, nil
}

// Provide returns the masked value; NULL stays NULL
func (p *MaskProvider) Provide(value any, _ *Row) (any, error) {
	s, ok := textValue(value)
	if !ok {
		return nil, nil
	}
	return strings.Repeat(p.Sign, utf8.RuneCountInString(norm.NFC.String(s))), nil
}

// ProviderName returns "mask"
func (p *MaskProvider) ProviderName() string { return "mask" }

// PartialMaskProvider masks a value except for Left leading and Right
// trailing characters. Values too short to keep both ends are masked
// entirely.
type PartialMaskProvider struct {
	Sign  string
	Left  int
	Right int
}

// NewPartialMaskProvider makes a new PartialMaskProvider from the
// "sign", "unmasked_left" and "unmasked_right" parameters
func NewPartialMaskProvider(_ string, params Params) (Provider, error) {
	sign, err := maskSign(params)
	if err != nil {
		return nil, fmt.Errorf("partial_mask provider: %w", err)
	}
	left, err := params.Int("unmasked_left", 1)
	if err != nil {
		return nil, fmt.Errorf("partial_mask provider: %w", err)
	}
	right, err := params.Int("unmasked_right", 1)
	if err != nil {
		return nil, fmt.Errorf("partial_mask provider: %w", err)
	}
	if left < 0 || right < 0 {
		return nil, errors.New("partial_mask provider: unmasked lengths cannot be negative")
	}
	return &PartialMaskProvider{Sign: sign, Left: left, Right: right}, nil
}

// Provide returns the partially masked value; NULL stays NULL
func (p *PartialMaskProvider) Provide(value any, _ *Row) (any, error) {
	s, ok := textValue(value)
	if !ok {
		return nil, nil
	}
	runes := []rune(norm.NFC.String(s))
	if len(runes) <= p.Left+p.Right {
		return strings.Repeat(p.Sign, len(runes)), nil
	}
	masked := strings.Repeat(p.Sign, len(runes)-p.Left-p.Right)
	return string(runes[:p.Left]) + masked + string(runes[len(runes)-p.Right:]), nil
}

// ProviderName returns "partial_mask"
func (p *PartialMaskProvider) ProviderName() string { return "partial_mask" }

func maskSign(params Params) (string, error) {
	sign, err := params.String("sign", "X")
	if err != nil {
		return "", err
	}
	if sign == "" {
		return "", errors.New("sign cannot be empty")
	}
	return sign, nil
}

// FileProvider replaces values with successive lines of a source file.
// If the lines are exhausted, start from the top again.
type FileProvider struct {
	Replacements []string
	next         atomic.Uint64
}

// NewFileProvider makes a new FileProvider reading the file named by the
// "source" parameter
func NewFileProvider(_ string, params Params) (Provider, error) {
	source, err := params.String("source", "")
	if err != nil {
		return nil, fmt.Errorf("file provider: %w", err)
	}
	if source == "" {
		return nil, errors.New("file provider: source parameter is required")
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("file provider: %w", err)
	}
	defer f.Close()
	return newFileProvider(f)
}

func newFileProvider(r io.Reader) (*FileProvider, error) {
	p := &FileProvider{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.Replacements = append(p.Replacements, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("file provider: %w", err)
	}
	if len(p.Replacements) == 0 {
		return nil, errors.New("file provider: source has no lines")
	}
	return p, nil
}

// Provide returns the next replacement line
func (p *FileProvider) Provide(_ any, _ *Row) (any, error) {
	n := p.next.Add(1) - 1
	return p.Replacements[n%uint64(len(p.Replacements))], nil
}

// ProviderName returns "file"
func (p *FileProvider) ProviderName() string { return "file" }
