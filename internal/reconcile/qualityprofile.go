package reconcile

import (
	"context"
	"fmt"

	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/poiley/arr-quality/internal/adapters"
	"github.com/poiley/arr-quality/internal/adapters/shared"
	irv1 "github.com/poiley/arr-quality/internal/ir/v1"
)

// EnsureQualityProfile makes sure a profile named desired.Name exists,
// deriving it from desired.Template when it does not. The profile's single
// score entry points at formatID. created is true when this call submitted it.
func EnsureQualityProfile(ctx context.Context, c adapters.Client, desired irv1.QualityProfileIR, formatID int, formatName string) (created bool, err error) {
	log := logf.FromContext(ctx).WithValues("qualityProfile", desired.Name)

	var profiles []shared.QualityProfileResource
	if err := c.Get(ctx, adapters.PathQualityProfile, &profiles); err != nil {
		return false, fmt.Errorf("failed to get quality profiles: %w", err)
	}

	if FindQualityProfile(profiles, desired.Name) != nil {
		log.Info("Quality profile already exists, nothing to do")
		return false, nil
	}

	template := FindQualityProfile(profiles, desired.Template)
	if template == nil {
		return false, &TemplateNotFoundError{Template: desired.Template}
	}

	profile := DeriveProfile(*template, DeriveParams{
		Name:          desired.Name,
		AllowedGroups: desired.AllowedGroups,
		Cutoff:        desired.Cutoff,
		FormatID:      formatID,
		FormatName:    formatName,
		FormatScore:   desired.FormatScore,
	})

	if err := c.Post(ctx, adapters.PathQualityProfile, profile, nil); err != nil {
		return false, fmt.Errorf("failed to create quality profile: %w", err)
	}

	log.Info("Created quality profile", "template", desired.Template, "allowedGroups", desired.AllowedGroups)
	return true, nil
}
