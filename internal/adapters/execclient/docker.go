package execclient

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/container"
	dockerclient "github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// DockerExecutor runs commands in a local container through the Docker
// Engine API. Connection settings come from the usual DOCKER_* environment.
type DockerExecutor struct {
	cli       *dockerclient.Client
	container string
}

var _ Executor = (*DockerExecutor)(nil)

// NewDockerExecutor creates an executor for the named container.
func NewDockerExecutor(containerName string) (*DockerExecutor, error) {
	cli, err := dockerclient.NewClientWithOpts(dockerclient.FromEnv, dockerclient.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &DockerExecutor{cli: cli, container: containerName}, nil
}

// Exec runs cmd in the container and waits for it to exit.
func (d *DockerExecutor) Exec(ctx context.Context, cmd []string, stdin io.Reader) ([]byte, []byte, error) {
	created, err := d.cli.ContainerExecCreate(ctx, d.container, container.ExecOptions{
		Cmd:          cmd,
		AttachStdin:  stdin != nil,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create exec in container %s: %w", d.container, err)
	}

	attach, err := d.cli.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to attach to exec in container %s: %w", d.container, err)
	}
	defer attach.Close()

	// curl reads the whole body before it writes anything, so feeding stdin
	// up front cannot deadlock against the output stream
	if stdin != nil {
		if _, err := io.Copy(attach.Conn, stdin); err != nil {
			return nil, nil, fmt.Errorf("failed to write exec stdin: %w", err)
		}
		if err := attach.CloseWrite(); err != nil {
			return nil, nil, fmt.Errorf("failed to close exec stdin: %w", err)
		}
	}

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, attach.Reader); err != nil {
		return nil, nil, fmt.Errorf("failed to read exec output: %w", err)
	}

	inspect, err := d.cli.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to inspect exec in container %s: %w", d.container, err)
	}
	if inspect.ExitCode != 0 {
		return stdout.Bytes(), stderr.Bytes(), &ExitError{Code: inspect.ExitCode, Stderr: stderr.String()}
	}

	return stdout.Bytes(), stderr.Bytes(), nil
}
