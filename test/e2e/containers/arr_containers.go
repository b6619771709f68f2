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

package containers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/poiley/arr-quality/internal/adapters/execclient"
	"github.com/poiley/arr-quality/internal/discovery"
)

// ArrType represents the type of *arr application
type ArrType string

const (
	ArrTypeRadarr ArrType = "radarr"
	ArrTypeSonarr ArrType = "sonarr"
)

// ArrContainer wraps a testcontainer for an *arr application
type ArrContainer struct {
	Container testcontainers.Container
	Type      ArrType
	Host      string

	// Port is the mapped host port; InternalPort is the port inside the container
	Port         int
	InternalPort int

	APIKey string
}

// ID returns the docker container ID, usable as a docker transport target
func (c *ArrContainer) ID() string {
	return c.Container.GetContainerID()
}

// URL returns the base URL for the *arr API
func (c *ArrContainer) URL() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// Terminate stops and removes the container
func (c *ArrContainer) Terminate(ctx context.Context) error {
	if c.Container != nil {
		return c.Container.Terminate(ctx)
	}
	return nil
}

// ArrContainerOptions configures the *arr container
type ArrContainerOptions struct {
	// ImageTag is the Docker image tag to use (default: "latest")
	ImageTag string
	// StartupTimeout is how long to wait for the container to be ready
	StartupTimeout time.Duration
}

// DefaultArrContainerOptions returns default options
func DefaultArrContainerOptions() ArrContainerOptions {
	return ArrContainerOptions{
		ImageTag:       "latest",
		StartupTimeout: 2 * time.Minute,
	}
}

// getImageName returns the Docker image name for the *arr type
func getImageName(arrType ArrType, tag string) string {
	// Use linuxserver images as they're well-maintained and ship curl
	return fmt.Sprintf("lscr.io/linuxserver/%s:%s", arrType, tag)
}

// getDefaultPort returns the default port for each *arr type
func getDefaultPort(arrType ArrType) int {
	switch arrType {
	case ArrTypeSonarr:
		return 8989
	default:
		return 7878
	}
}

// StartArrContainer starts an *arr container and waits for it to be ready
func StartArrContainer(ctx context.Context, arrType ArrType, opts ArrContainerOptions) (*ArrContainer, error) {
	if opts.ImageTag == "" {
		opts.ImageTag = "latest"
	}
	if opts.StartupTimeout == 0 {
		opts.StartupTimeout = 2 * time.Minute
	}

	port := getDefaultPort(arrType)
	natPort := nat.Port(fmt.Sprintf("%d/tcp", port))

	req := testcontainers.ContainerRequest{
		Image:        getImageName(arrType, opts.ImageTag),
		ExposedPorts: []string{string(natPort)},
		Env: map[string]string{
			"PUID": "1000",
			"PGID": "1000",
			"TZ":   "Etc/UTC",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(natPort),
			wait.ForHTTP("/").
				WithPort(natPort).
				WithStatusCodeMatcher(func(status int) bool {
					// *arr apps return 200 or redirect to setup wizard
					return status == http.StatusOK || status == http.StatusFound || status == http.StatusMovedPermanently
				}),
		).WithDeadline(opts.StartupTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s container: %w", arrType, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, natPort)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}
	hostPort, err := strconv.Atoi(mappedPort.Port())
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("invalid mapped port %q: %w", mappedPort.Port(), err)
	}

	// config.xml appears only after first boot, so poll for the key through
	// the same docker exec path the CLI uses
	exec, err := execclient.NewDockerExecutor(container.GetContainerID())
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	apiKey, err := discovery.WaitForAPIKey(ctx, exec, discovery.DefaultPollInterval, opts.StartupTimeout)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to extract API key: %w", err)
	}

	return &ArrContainer{
		Container:    container,
		Type:         arrType,
		Host:         host,
		Port:         hostPort,
		InternalPort: port,
		APIKey:       apiKey,
	}, nil
}

// StartRadarr is a convenience function to start a Radarr container
func StartRadarr(ctx context.Context, opts ...ArrContainerOptions) (*ArrContainer, error) {
	opt := DefaultArrContainerOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	return StartArrContainer(ctx, ArrTypeRadarr, opt)
}

// StartSonarr is a convenience function to start a Sonarr container
func StartSonarr(ctx context.Context, opts ...ArrContainerOptions) (*ArrContainer, error) {
	opt := DefaultArrContainerOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	return StartArrContainer(ctx, ArrTypeSonarr, opt)
}
