package service

import (
	"errors"
	"testing"
)

func TestCandidates(t *testing.T) {
	s := NewTickerSynthesizer([]string{"KXHIGHNY", "HIGHNY"})

	tests := []struct {
		date string
		want []string
	}{
		{"2025-08-05", []string{"KXHIGHNY-25AUG05", "HIGHNY-25AUG05"}},
		{"2024-01-31", []string{"KXHIGHNY-24JAN31", "HIGHNY-24JAN31"}},
		{"2023-12-01", []string{"KXHIGHNY-23DEC01", "HIGHNY-23DEC01"}},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := s.Candidates(tt.date)
			if err != nil {
				t.Fatalf("Candidates failed: %v", err)
			}
			if !equalStrings(got, tt.want) {
				t.Errorf("Candidates(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestCandidatesDeterministic(t *testing.T) {
	s := NewTickerSynthesizer([]string{"KXHIGHNY", "HIGHNY"})
	first, _ := s.Candidates("2025-07-04")
	for i := 0; i < 10; i++ {
		again, _ := s.Candidates("2025-07-04")
		if !equalStrings(first, again) {
			t.Fatalf("candidates changed between calls: %v vs %v", first, again)
		}
	}
}

func TestCandidatesPrefixesAreCopied(t *testing.T) {
	prefixes := []string{"KXHIGHNY", "HIGHNY"}
	s := NewTickerSynthesizer(prefixes)
	prefixes[0] = "MUTATED"

	got, _ := s.Candidates("2025-08-05")
	if got[0] != "KXHIGHNY-25AUG05" {
		t.Errorf("synthesizer observed caller mutation: %v", got)
	}
}

func TestCandidatesExtraPrefix(t *testing.T) {
	s := NewTickerSynthesizer([]string{"KXHIGHNY", "HIGHNY", "KXHIGHNYC"})
	got, _ := s.Candidates("2025-08-05")
	if len(got) != 3 || got[2] != "KXHIGHNYC-25AUG05" {
		t.Errorf("unexpected candidates: %v", got)
	}
}

func TestCandidatesInvalid(t *testing.T) {
	s := NewTickerSynthesizer([]string{"KXHIGHNY"})
	for _, date := range []string{"", "2025-13-01", "2025-00-10", "2025/08/05", "25-08-05", "2025-8-5", "abcd-ef-gh"} {
		if _, err := s.Candidates(date); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("Candidates(%q) error = %v, want ErrInvalidDate", date, err)
		}
	}
}
