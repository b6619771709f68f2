//go:build e2e
// +build e2e

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

package e2e

import (
	"bytes"
	"context"
	"strconv"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/poiley/arr-quality/internal/adapters"
	"github.com/poiley/arr-quality/internal/adapters/httpclient"
	"github.com/poiley/arr-quality/internal/adapters/shared"
	"github.com/poiley/arr-quality/internal/cli"
	"github.com/poiley/arr-quality/internal/presets"
	"github.com/poiley/arr-quality/internal/reconcile"
	"github.com/poiley/arr-quality/test/e2e/containers"
)

// These tests run the reconciler against real *arr containers.
// They require Docker to be running and will spin up actual containers.
var _ = Describe("Arr Integration", Ordered, Label("integration"), func() {
	var (
		ctx             context.Context
		cancel          context.CancelFunc
		radarrContainer *containers.ArrContainer
		sonarrContainer *containers.ArrContainer
	)

	BeforeAll(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Minute)

		By("starting Radarr container")
		var err error
		radarrContainer, err = containers.StartRadarr(ctx, containers.ArrContainerOptions{
			StartupTimeout: 3 * time.Minute,
		})
		Expect(err).NotTo(HaveOccurred(), "Failed to start Radarr container")
		GinkgoWriter.Printf("Radarr started at %s\n", radarrContainer.URL())

		By("starting Sonarr container")
		sonarrContainer, err = containers.StartSonarr(ctx, containers.ArrContainerOptions{
			StartupTimeout: 3 * time.Minute,
		})
		Expect(err).NotTo(HaveOccurred(), "Failed to start Sonarr container")
		GinkgoWriter.Printf("Sonarr started at %s\n", sonarrContainer.URL())
	})

	AfterAll(func() {
		By("cleaning up containers")
		if radarrContainer != nil {
			_ = radarrContainer.Terminate(ctx)
		}
		if sonarrContainer != nil {
			_ = sonarrContainer.Terminate(ctx)
		}
		cancel()
	})

	Context("Radarr over HTTP", Ordered, func() {
		var client *httpclient.Client

		BeforeAll(func() {
			client = httpclient.New(httpclient.Config{
				BaseURL: radarrContainer.URL() + "/api/v3",
				APIKey:  radarrContainer.APIKey,
			})
		})

		It("should create the custom format and the derived profile", func() {
			desired, ok := presets.Get(presets.DefaultPreset)
			Expect(ok).To(BeTrue())

			res := (&reconcile.Coordinator{Client: client, Desired: desired}).Run(ctx)
			Expect(res.Err).NotTo(HaveOccurred())
			Expect(res.Outcome).To(Equal(reconcile.OutcomeChanged))
			Expect(res.CustomFormatCreated).To(BeTrue())
			Expect(res.ProfileCreated).To(BeTrue())

			var profiles []shared.QualityProfileResource
			Expect(client.Get(ctx, adapters.PathQualityProfile, &profiles)).To(Succeed())

			profile := reconcile.FindQualityProfile(profiles, "4K Minimal")
			Expect(profile).NotTo(BeNil())
			Expect(profile.Cutoff).To(Equal(1003))
			Expect(profile.UpgradeAllowed).To(BeTrue())
			Expect(profile.MinUpgradeFormatScore).To(Equal(1))
			Expect(profile.FormatItems).To(ContainElement(shared.ProfileFormatItem{
				Format: res.CustomFormatID,
				Name:   "Prefer x265",
				Score:  100,
			}))

			By("checking only the WEB 1080p and WEB 2160p groups are allowed")
			for _, item := range profile.Items {
				want := item.DisplayName() == "WEB 1080p" || item.DisplayName() == "WEB 2160p"
				Expect(item.Allowed).To(Equal(want), "item %s", item.DisplayName())
			}
		})

		It("should report unchanged on the second run", func() {
			desired, _ := presets.Get(presets.DefaultPreset)

			res := (&reconcile.Coordinator{Client: client, Desired: desired}).Run(ctx)
			Expect(res.Err).NotTo(HaveOccurred())
			Expect(res.Outcome).To(Equal(reconcile.OutcomeUnchanged))
		})

		It("should fail on a missing template but keep the custom format", func() {
			desired, _ := presets.Get(presets.DefaultPreset)
			desired.CustomFormat.Name = "Prefer AV1"
			desired.QualityProfile.Name = "Never Created"
			desired.QualityProfile.Template = "No Such Profile"

			res := (&reconcile.Coordinator{Client: client, Desired: desired}).Run(ctx)
			Expect(res.Outcome).To(Equal(reconcile.OutcomeFailed))
			Expect(res.Err).To(MatchError(reconcile.ErrTemplateNotFound))
			Expect(res.CustomFormatCreated).To(BeTrue())

			var formats []shared.CustomFormatResource
			Expect(client.Get(ctx, adapters.PathCustomFormat, &formats)).To(Succeed())
			Expect(reconcile.FindCustomFormat(formats, "Prefer AV1")).NotTo(BeNil())
		})
	})

	Context("CLI over docker exec", func() {
		It("should discover the API key and find Radarr already converged", func() {
			var stderr bytes.Buffer
			code := cli.Execute(ctx, []string{
				radarrContainer.ID(),
				strconv.Itoa(radarrContainer.InternalPort),
				"auto",
			}, &stderr)
			Expect(code).To(Equal(reconcile.ExitUnchanged), stderr.String())
		})

		It("should converge a fresh Sonarr and exit 2 then 0", func() {
			args := []string{
				sonarrContainer.ID(),
				strconv.Itoa(sonarrContainer.InternalPort),
				sonarrContainer.APIKey,
				"--transport", adapters.TransportDocker,
			}

			var stderr bytes.Buffer
			Expect(cli.Execute(ctx, args, &stderr)).To(Equal(reconcile.ExitChanged), stderr.String())

			stderr.Reset()
			Expect(cli.Execute(ctx, args, &stderr)).To(Equal(reconcile.ExitUnchanged), stderr.String())
		})
	})
})
