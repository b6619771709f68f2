package reconcile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/poiley/arr-quality/internal/adapters"
	"github.com/poiley/arr-quality/internal/adapters/shared"
	irv1 "github.com/poiley/arr-quality/internal/ir/v1"
)

// EnsureCustomFormat makes sure a custom format named desired.Name exists and
// returns its ID. created is true when this call submitted it.
func EnsureCustomFormat(ctx context.Context, c adapters.Client, desired irv1.CustomFormatIR) (id int, created bool, err error) {
	log := logf.FromContext(ctx).WithValues("customFormat", desired.Name)

	var existing []shared.CustomFormatResource
	if err := c.Get(ctx, adapters.PathCustomFormat, &existing); err != nil {
		return 0, false, fmt.Errorf("failed to get custom formats: %w", err)
	}

	if cf := FindCustomFormat(existing, desired.Name); cf != nil {
		if cf.ID == nil {
			return 0, false, adapters.NewTransportError(http.MethodGet, adapters.PathCustomFormat,
				fmt.Errorf("custom format %q has no id", desired.Name))
		}
		log.Info("Custom format already exists", "id", *cf.ID)
		return *cf.ID, false, nil
	}

	var result shared.CustomFormatResource
	if err := c.Post(ctx, adapters.PathCustomFormat, customFormatFromIR(desired), &result); err != nil {
		return 0, false, fmt.Errorf("failed to create custom format: %w", err)
	}
	if result.ID == nil {
		return 0, false, adapters.NewTransportError(http.MethodPost, adapters.PathCustomFormat,
			errors.New("create response carries no id"))
	}

	log.Info("Created custom format", "id", *result.ID)
	return *result.ID, true, nil
}

// customFormatFromIR converts IR to a custom format create request
func customFormatFromIR(ir irv1.CustomFormatIR) shared.CustomFormatResource {
	cf := shared.CustomFormatResource{
		Name:                            ir.Name,
		IncludeCustomFormatWhenRenaming: ir.IncludeWhenRenaming,
		Specifications:                  make([]shared.CustomFormatSpecification, 0, len(ir.Specifications)),
	}

	for _, spec := range ir.Specifications {
		cf.Specifications = append(cf.Specifications, shared.CustomFormatSpecification{
			Name:           spec.Name,
			Implementation: spec.Type,
			Negate:         spec.Negate,
			Required:       spec.Required,
			Fields:         []shared.Field{{Name: "value", Value: fieldValue(spec)}},
		})
	}

	return cf
}

// fieldValue sends enum-backed specifications (source, resolution, ...) as
// numbers. Pattern specifications always keep the literal string.
func fieldValue(spec irv1.FormatSpecIR) interface{} {
	switch spec.Type {
	case "ReleaseTitleSpecification", "ReleaseGroupSpecification", "EditionSpecification":
		return spec.Value
	}
	if n, err := strconv.Atoi(spec.Value); err == nil {
		return n
	}
	return spec.Value
}
