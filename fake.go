package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/brianvoe/gofakeit/v6"
)

// fakePrefix and fakeUniquePrefix are the provider name prefixes of the
// synthetic data providers, eg "fake.first_name", "fake.unique.email"
const (
	fakePrefix       = "fake."
	fakeUniquePrefix = "fake.unique."
)

// maxUniqueAttempts bounds the retries of a unique fake provider before
// it gives up
const maxUniqueAttempts = 1000

// fakeGenerators maps fake categories to their generators
var fakeGenerators = map[string]func() any{
	"first_name":     func() any { return gofakeit.FirstName() },
	"last_name":      func() any { return gofakeit.LastName() },
	"name":           func() any { return gofakeit.Name() },
	"email":          func() any { return gofakeit.Email() },
	"user_name":      func() any { return gofakeit.Username() },
	"phone_number":   func() any { return gofakeit.Phone() },
	"address":        func() any { return gofakeit.Address().Address },
	"street_address": func() any { return gofakeit.Street() },
	"city":           func() any { return gofakeit.City() },
	"state":          func() any { return gofakeit.State() },
	"country":        func() any { return gofakeit.Country() },
	"postcode":       func() any { return gofakeit.Zip() },
	"zipcode":        func() any { return gofakeit.Zip() },
	"company":        func() any { return gofakeit.Company() },
	"job":            func() any { return gofakeit.JobTitle() },
	"text":           func() any { return gofakeit.Paragraph(1, 3, 12, " ") },
	"sentence":       func() any { return gofakeit.Sentence(8) },
	"word":           func() any { return gofakeit.Word() },
	"url":            func() any { return gofakeit.URL() },
	"ipv4":           func() any { return gofakeit.IPv4Address() },
	"uuid4":          func() any { return gofakeit.UUID() },
	"ssn":            func() any { return gofakeit.SSN() },
	"date":           func() any { return gofakeit.Date() },
	"pystr":          func() any { return gofakeit.LetterN(20) },
}

// FakeProvider returns synthetic values of a named category
type FakeProvider struct {
	name     string
	generate func() any
}

// NewFakeProvider makes a FakeProvider, or a unique one, for the category
// in the provider name
func NewFakeProvider(name string, _ Params) (Provider, error) {
	unique := strings.HasPrefix(name, fakeUniquePrefix)
	category := strings.TrimPrefix(name, fakeUniquePrefix)
	category = strings.TrimPrefix(category, fakePrefix)
	gen, ok := fakeGenerators[category]
	if !ok {
		return nil, &UnknownProviderError{Name: name}
	}
	p := &FakeProvider{name: name, generate: gen}
	if unique {
		return &UniqueFakeProvider{FakeProvider: p, seen: map[string]struct{}{}}, nil
	}
	return p, nil
}

// Provide returns a new synthetic value
func (p *FakeProvider) Provide(_ any, _ *Row) (any, error) {
	return p.generate(), nil
}

// ProviderName returns the full provider name, eg "fake.email"
func (p *FakeProvider) ProviderName() string { return p.name }

// UniqueFakeProvider is a FakeProvider that never returns the same value
// twice
type UniqueFakeProvider struct {
	*FakeProvider
	mu   sync.Mutex
	seen map[string]struct{}
}

// Provide returns a synthetic value not returned before
func (p *UniqueFakeProvider) Provide(_ any, _ *Row) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 0; i < maxUniqueAttempts; i++ {
		v := p.generate()
		key := fmt.Sprint(v)
		if _, ok := p.seen[key]; ok {
			continue
		}
		p.seen[key] = struct{}{}
		return v, nil
	}
	return nil, fmt.Errorf("%s: no unique value after %d attempts", p.name, maxUniqueAttempts)
}
