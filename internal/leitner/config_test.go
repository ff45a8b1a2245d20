package leitner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpereira/leitnerbox/internal/leitner"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := leitner.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.Boxes.NumberOfBoxes)
	assert.Equal(t, 4, cfg.TopBox())
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := leitner.DefaultConfig()
	delete(cfg.Boxes.PromotionRules, 1)
	delete(cfg.Scheduling.BoxIntervals, 3)
	delete(cfg.Boxes.DemotionRules, 4)

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "box 1 has no promotion rule")
	assert.Contains(t, err.Error(), "box 3 has no review interval")
	assert.Contains(t, err.Error(), "box 4 has no demotion rule")
}

func TestValidate_BoxZeroMustNotDemote(t *testing.T) {
	cfg := leitner.DefaultConfig()
	cfg.Boxes.DemotionRules[0] = leitner.DemotionRule{IncorrectAnswersNeeded: 1, DemoteToBox: 0}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "box 0 must not have a demotion rule")
}

func TestValidate_DemotionTargetMustBeLower(t *testing.T) {
	cfg := leitner.DefaultConfig()
	cfg.Boxes.DemotionRules[2] = leitner.DemotionRule{IncorrectAnswersNeeded: 1, DemoteToBox: 3}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "box 2 demotes to invalid box 3")
}

func TestValidate_UnknownBoxReferences(t *testing.T) {
	cfg := leitner.DefaultConfig()
	cfg.Boxes.PromotionRules[7] = leitner.PromotionRule{CorrectAnswersNeeded: 1}
	cfg.Scheduling.BoxIntervals[9] = 4

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "promotion rule references unknown box 7")
	assert.Contains(t, err.Error(), "interval references unknown box 9")
}
