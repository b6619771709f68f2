/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/utils/ptr"

	"github.com/poiley/arr-quality/internal/adapters"
	"github.com/poiley/arr-quality/internal/adapters/mock"
	"github.com/poiley/arr-quality/internal/adapters/shared"
)

type fakeRecorder struct {
	created []string
	runs    []string
}

func (f *fakeRecorder) RecordCreated(resourceType string) {
	f.created = append(f.created, resourceType)
}

func (f *fakeRecorder) RecordRun(outcome string, _ time.Duration) {
	f.runs = append(f.runs, outcome)
}

var _ = Describe("Coordinator", func() {
	var (
		ctx         context.Context
		service     *mock.Client
		recorder    *fakeRecorder
		coordinator *Coordinator
	)

	BeforeEach(func() {
		ctx = context.Background()
		service = mock.NewClient()
		recorder = &fakeRecorder{}
		coordinator = &Coordinator{
			Client:   service,
			Desired:  testDesired(),
			Recorder: recorder,
		}
	})

	Context("on a fresh service with the template present", func() {
		BeforeEach(func() {
			service.NextID = 42
			service.QualityProfiles = []shared.QualityProfileResource{ultraHD()}
		})

		It("creates the custom format and the derived profile", func() {
			res := coordinator.Run(ctx)

			Expect(res.Err).NotTo(HaveOccurred())
			Expect(res.Outcome).To(Equal(OutcomeChanged))
			Expect(res.Outcome.ExitCode()).To(Equal(ExitChanged))
			Expect(res.RunID).NotTo(BeEmpty())
			Expect(res.CustomFormatID).To(Equal(42))
			Expect(res.CustomFormatCreated).To(BeTrue())
			Expect(res.ProfileCreated).To(BeTrue())

			By("submitting the profile derived from Ultra-HD")
			posts := service.CallsTo(http.MethodPost, adapters.PathQualityProfile)
			Expect(posts).To(HaveLen(1))

			var sent map[string]interface{}
			Expect(json.Unmarshal(posts[0].Body, &sent)).To(Succeed())
			Expect(sent).NotTo(HaveKey("id"))
			Expect(sent).To(HaveKeyWithValue("name", "4K Minimal"))
			Expect(sent).To(HaveKeyWithValue("upgradeAllowed", true))
			Expect(sent).To(HaveKeyWithValue("cutoff", BeNumerically("==", 1003)))
			Expect(sent).To(HaveKeyWithValue("minFormatScore", BeNumerically("==", 0)))
			Expect(sent).To(HaveKeyWithValue("cutoffFormatScore", BeNumerically("==", 0)))
			Expect(sent).To(HaveKeyWithValue("minUpgradeFormatScore", BeNumerically("==", 1)))
			Expect(sent["formatItems"]).To(Equal([]interface{}{
				map[string]interface{}{"format": float64(42), "name": "Prefer x265", "score": float64(100)},
			}))

			items := sent["items"].([]interface{})
			Expect(items).To(HaveLen(3))
			allowed := map[string]bool{}
			for _, raw := range items {
				item := raw.(map[string]interface{})
				allowed[item["name"].(string)] = item["allowed"].(bool)
				for _, sub := range item["items"].([]interface{}) {
					Expect(sub.(map[string]interface{})["allowed"]).To(Equal(item["allowed"]))
				}
			}
			Expect(allowed).To(Equal(map[string]bool{"WEB 1080p": true, "WEB 2160p": true, "Other": false}))

			By("recording both creations and the run")
			Expect(recorder.created).To(Equal([]string{adapters.ResourceCustomFormat, adapters.ResourceQualityProfile}))
			Expect(recorder.runs).To(Equal([]string{string(OutcomeChanged)}))
		})

		It("reports unchanged on the second run", func() {
			Expect(coordinator.Run(ctx).Outcome).To(Equal(OutcomeChanged))
			service.Reset()

			res := coordinator.Run(ctx)

			Expect(res.Err).NotTo(HaveOccurred())
			Expect(res.Outcome).To(Equal(OutcomeUnchanged))
			Expect(res.Outcome.ExitCode()).To(Equal(ExitUnchanged))
			Expect(res.CustomFormatID).To(Equal(42))
			Expect(service.CallsTo(http.MethodPost, adapters.PathCustomFormat)).To(BeEmpty())
			Expect(service.CallsTo(http.MethodPost, adapters.PathQualityProfile)).To(BeEmpty())
			Expect(service.CustomFormats).To(HaveLen(1))
			Expect(service.QualityProfiles).To(HaveLen(2))
		})

		It("uses a fresh run ID per run", func() {
			first := coordinator.Run(ctx)
			second := coordinator.Run(ctx)
			Expect(first.RunID).NotTo(Equal(second.RunID))
		})
	})

	Context("when the custom format exists but the profile does not", func() {
		BeforeEach(func() {
			service.NextID = 50
			service.CustomFormats = []shared.CustomFormatResource{{ID: ptr.To(5), Name: "Prefer x265"}}
			service.QualityProfiles = []shared.QualityProfileResource{ultraHD()}
		})

		It("creates only the profile, scored against the existing format", func() {
			res := coordinator.Run(ctx)

			Expect(res.Err).NotTo(HaveOccurred())
			Expect(res.Outcome).To(Equal(OutcomeChanged))
			Expect(res.CustomFormatCreated).To(BeFalse())
			Expect(res.ProfileCreated).To(BeTrue())
			Expect(service.CallsTo(http.MethodPost, adapters.PathCustomFormat)).To(BeEmpty())

			Expect(service.QualityProfiles).To(HaveLen(2))
			created := service.QualityProfiles[1]
			Expect(created.FormatItems).To(Equal([]shared.ProfileFormatItem{
				{Format: 5, Name: "Prefer x265", Score: 100},
			}))
			Expect(recorder.created).To(Equal([]string{adapters.ResourceQualityProfile}))
		})
	})

	Context("when the profile exists but the custom format does not", func() {
		BeforeEach(func() {
			service.NextID = 60
			service.QualityProfiles = []shared.QualityProfileResource{
				ultraHD(),
				{ID: ptr.To(9), Name: "4K Minimal"},
			}
		})

		It("creates only the custom format and still reports changed", func() {
			res := coordinator.Run(ctx)

			Expect(res.Err).NotTo(HaveOccurred())
			Expect(res.Outcome).To(Equal(OutcomeChanged))
			Expect(res.Outcome.ExitCode()).To(Equal(ExitChanged))
			Expect(res.CustomFormatID).To(Equal(60))
			Expect(res.CustomFormatCreated).To(BeTrue())
			Expect(res.ProfileCreated).To(BeFalse())

			Expect(service.CallsTo(http.MethodPost, adapters.PathCustomFormat)).To(HaveLen(1))
			Expect(service.CallsTo(http.MethodPost, adapters.PathQualityProfile)).To(BeEmpty())
			Expect(service.QualityProfiles).To(HaveLen(2))
			Expect(recorder.created).To(Equal([]string{adapters.ResourceCustomFormat}))
			Expect(recorder.runs).To(Equal([]string{string(OutcomeChanged)}))
		})
	})

	Context("when the template profile is missing", func() {
		BeforeEach(func() {
			service.QualityProfiles = []shared.QualityProfileResource{{ID: ptr.To(1), Name: "Any"}}
		})

		It("fails after creating the custom format and keeps it", func() {
			res := coordinator.Run(ctx)

			Expect(res.Outcome).To(Equal(OutcomeFailed))
			Expect(res.Outcome.ExitCode()).To(Equal(ExitFailed))
			Expect(res.Err).To(MatchError(ErrTemplateNotFound))
			Expect(res.Err.Error()).To(ContainSubstring(`"Ultra-HD" profile not found to use as template`))
			Expect(res.CustomFormatCreated).To(BeTrue())
			Expect(res.Changed()).To(BeTrue())

			Expect(service.CustomFormats).To(HaveLen(1))
			Expect(service.CallsTo(http.MethodPost, adapters.PathQualityProfile)).To(BeEmpty())
			Expect(recorder.runs).To(Equal([]string{string(OutcomeFailed)}))
		})

		It("finishes on a later run once the template appears", func() {
			Expect(coordinator.Run(ctx).Outcome).To(Equal(OutcomeFailed))

			service.QualityProfiles = append(service.QualityProfiles, ultraHD())
			res := coordinator.Run(ctx)

			Expect(res.Outcome).To(Equal(OutcomeChanged))
			Expect(res.CustomFormatCreated).To(BeFalse())
			Expect(res.ProfileCreated).To(BeTrue())
			Expect(service.CustomFormats).To(HaveLen(1))
		})
	})

	Context("when both resources already exist", func() {
		BeforeEach(func() {
			service.CustomFormats = []shared.CustomFormatResource{{ID: ptr.To(5), Name: "Prefer x265"}}
			service.QualityProfiles = []shared.QualityProfileResource{{ID: ptr.To(9), Name: "4K Minimal"}}
		})

		It("changes nothing even without a template", func() {
			res := coordinator.Run(ctx)

			Expect(res.Err).NotTo(HaveOccurred())
			Expect(res.Outcome).To(Equal(OutcomeUnchanged))
			Expect(recorder.created).To(BeEmpty())
		})
	})

	Context("when the service is unreachable", func() {
		BeforeEach(func() {
			service.FailOn(http.MethodGet, adapters.PathCustomFormat, errors.New("connection refused"))
		})

		It("fails with a transport error before touching profiles", func() {
			res := coordinator.Run(ctx)

			Expect(res.Outcome).To(Equal(OutcomeFailed))
			var te *adapters.TransportError
			Expect(errors.As(res.Err, &te)).To(BeTrue())
			Expect(res.Err.Error()).To(ContainSubstring("connection refused"))
			Expect(service.CallsTo(http.MethodGet, adapters.PathQualityProfile)).To(BeEmpty())
		})
	})

	It("runs without a recorder", func() {
		service.QualityProfiles = []shared.QualityProfileResource{ultraHD()}
		coordinator.Recorder = nil

		Expect(coordinator.Run(ctx).Outcome).To(Equal(OutcomeChanged))
	})
})
