package color

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// keywordFile is the on-disk layout of a keyword table:
//
//	buckets:
//	  RED: [rock, metal]
//	  CYAN: [edm, house]
type keywordFile struct {
	Buckets map[string][]string `yaml:"buckets"`
}

// LoadKeywords reads a YAML keyword table. Buckets missing from the file keep
// their default keywords.
func LoadKeywords(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keyword file: %w", err)
	}
	return ParseKeywords(data)
}

// ParseKeywords decodes a YAML keyword table and merges it over the defaults.
func ParseKeywords(data []byte) (map[string][]string, error) {
	var f keywordFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing keyword file: %w", err)
	}

	table := DefaultKeywords()
	for bucket, kws := range f.Buckets {
		if !isBucket(bucket) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
		}
		table[bucket] = kws
	}
	return table, nil
}
