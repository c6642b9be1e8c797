package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestDeletingTestKeepsAttempts(t *testing.T) {
	s, err := schema.Parse(&Attempt{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	rel, ok := s.Relationships.Relations["Test"]
	require.True(t, ok)
	constraint := rel.ParseConstraint()
	require.NotNil(t, constraint)
	assert.Equal(t, "RESTRICT", constraint.OnDelete)
}

func TestAttemptState(t *testing.T) {
	var a Attempt
	assert.Equal(t, AttemptOpen, a.State())
	a.CompletedAt = &a.StartedAt
	assert.Equal(t, AttemptGraded, a.State())
}
