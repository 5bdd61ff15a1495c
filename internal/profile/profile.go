// Package profile generates synthetic Plannivo user profiles for load-test
// population runs. Every profile carries a fixed test prefix in its email so
// the accounts can be found again even without a manifest.
package profile

import (
	"fmt"
	"time"
)

const (
	// TestPrefix marks every synthetic account for later identification.
	TestPrefix = "stress_test_"

	// Password is shared by every synthetic account.
	Password = "StressTest123!"

	emailDomain = "stresstest.plannivo.local"
)

// Profile holds one generated user before submission to the API.
type Profile struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Age       int
	Weight    int
	Currency  string

	// TestID is a local correlation id. It is recorded in the manifest but
	// never sent to the API under that name.
	TestID string
}

// Generator produces profiles with run-unique emails. The run timestamp is
// fixed at construction so every profile of one run shares it.
type Generator struct {
	rand  Rand
	runTS int64
}

// New creates a generator stamped with the current run time.
func New(r Rand) *Generator {
	return &Generator{rand: r, runTS: time.Now().Unix()}
}

// Generate produces the profile for the given index within the run.
func (g *Generator) Generate(index int) Profile {
	testID := fmt.Sprintf("%s%d_%04d", TestPrefix, g.runTS, index)

	return Profile{
		FirstName: pick(g.rand, firstNames),
		LastName:  pick(g.rand, lastNames),
		Email:     testID + "@" + emailDomain,
		Phone:     g.phone(),
		Password:  Password,
		Age:       18 + g.rand.Intn(48),
		Weight:    50 + g.rand.Intn(51),
		Currency:  "EUR",
		TestID:    testID,
	}
}

// phone generates a fictional phone number: (555) XXX-XXXX, 14 characters,
// which fits the API's 15-character limit.
func (g *Generator) phone() string {
	prefix := 100 + g.rand.Intn(900)
	line := g.rand.Intn(10000)
	return fmt.Sprintf("(555) %03d-%04d", prefix, line)
}

// pick returns a random element from a string slice.
func pick(r Rand, s []string) string {
	return s[r.Intn(len(s))]
}
