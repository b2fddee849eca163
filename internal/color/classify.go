package color

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownBucket is returned when a keyword table names a bucket outside the hue table.
var ErrUnknownBucket = errors.New("unknown color bucket")

// fallbackWeights is used when no keyword matches. Unnormalized.
var fallbackWeights = map[string]float64{
	Cyan:  1.0,
	Green: 0.7,
	Blue:  0.5,
}

// Weights maps bucket names to their share of the final color.
type Weights map[string]float64

// Sum returns the total weight, added in table order so repeated calls agree bit for bit.
func (w Weights) Sum() float64 {
	var total float64
	for _, b := range Buckets {
		total += w[b.Name]
	}
	return total
}

// DefaultKeywords returns the built-in genre keyword table.
func DefaultKeywords() map[string][]string {
	return map[string][]string{
		Red:    {"rock", "metal", "punk", "emo"},
		Orange: {"latin", "reggaeton", "afrobeats"},
		Yellow: {"pop", "k-pop", "j-pop"},
		Green:  {"indie", "folk", "country", "bluegrass"},
		Cyan:   {"edm", "house", "trance"},
		Blue:   {"ambient", "chill", "lofi"},
		Purple: {"hip hop", "rap", "r&b"},
		Pink:   {"jazz", "classical", "instrumental"},
	}
}

// Classifier scores genre strings against a keyword table.
// It is safe for concurrent use; the table is copied at construction.
type Classifier struct {
	keywords map[string][]string
}

// NewClassifier builds a Classifier from a bucket -> keywords table.
// Keywords are matched case-insensitively.
func NewClassifier(keywords map[string][]string) (*Classifier, error) {
	table := make(map[string][]string, len(keywords))
	for bucket, kws := range keywords {
		if !isBucket(bucket) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
		}
		lowered := make([]string, 0, len(kws))
		for _, kw := range kws {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				lowered = append(lowered, kw)
			}
		}
		table[bucket] = lowered
	}
	return &Classifier{keywords: table}, nil
}

// DefaultClassifier returns a Classifier over DefaultKeywords.
func DefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultKeywords())
	if err != nil {
		panic(err)
	}
	return c
}

// Classify turns a genre list into a normalized weight distribution.
// Every bucket is present in the result and the weights sum to 1.
func (c *Classifier) Classify(genres []string) Weights {
	text := strings.ToLower(strings.Join(genres, " "))

	weights := make(Weights, len(Buckets))
	for _, b := range Buckets {
		weights[b.Name] = 0
	}

	for bucket, kws := range c.keywords {
		for _, kw := range kws {
			if strings.Contains(text, kw) {
				weights[bucket] += 1.0
			}
		}
	}

	// Upstream often has no genres for newer artists.
	if weights.Sum() == 0 {
		for name, w := range fallbackWeights {
			weights[name] = w
		}
	}

	total := weights.Sum()
	for name := range weights {
		weights[name] /= total
	}
	return weights
}
