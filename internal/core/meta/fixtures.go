package meta

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"prerender/internal/logger"
)

// FixtureService serves metadata records from a YAML file mapping URL to
// record. It backs the built-in /api/meta endpoint so deployments without an
// external metadata provider can still enrich snapshots.
type FixtureService struct {
	records map[string]Record
	log     *logger.Logger
}

func NewFixtureService(path string) (*FixtureService, error) {
	s := &FixtureService{records: make(map[string]Record), log: logger.New("MetaFixtures")}
	if path == "" {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read meta fixtures: %w", err)
	}
	if err := yaml.Unmarshal(b, &s.records); err != nil {
		return nil, fmt.Errorf("parse meta fixtures: %w", err)
	}
	s.log.LogInfof("loaded %d metadata records", len(s.records))
	return s, nil
}

func (s *FixtureService) Lookup(url string) (Record, bool) {
	rec, ok := s.records[url]
	return rec, ok
}
