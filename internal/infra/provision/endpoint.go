// Where: curstack/internal/infra/provision/endpoint.go
// What: Local endpoint discovery for emulated AWS stacks.
// Why: `--endpoint auto` finds a running LocalStack container instead of
//      requiring the published port on the command line.
package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// AutoEndpoint is the sentinel that triggers container discovery.
const AutoEndpoint = "auto"

const localstackEdgePort = 4566

// DockerClient is the slice of the Docker API endpoint discovery needs.
type DockerClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
}

// EndpointResolver turns an --endpoint flag value into a usable URL.
type EndpointResolver interface {
	Resolve(ctx context.Context, requested string) (string, error)
}

type dockerEndpointResolver struct {
	Client DockerClient
}

// NewEndpointResolver returns a resolver that passes explicit endpoints
// through and discovers LocalStack's published edge port for AutoEndpoint.
func NewEndpointResolver(dockerClient DockerClient) EndpointResolver {
	return dockerEndpointResolver{Client: dockerClient}
}

// NewDockerClient builds a Docker API client from the environment.
func NewDockerClient() (*client.Client, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}

func (r dockerEndpointResolver) Resolve(ctx context.Context, requested string) (string, error) {
	trimmed := strings.TrimSpace(requested)
	if trimmed != AutoEndpoint {
		return trimmed, nil
	}
	if r.Client == nil {
		return "", fmt.Errorf("docker client is nil")
	}

	containers, err := r.Client.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return "", err
	}
	for _, ctr := range containers {
		if !strings.Contains(ctr.Image, "localstack") {
			continue
		}
		for _, port := range ctr.Ports {
			if int(port.PrivatePort) != localstackEdgePort {
				continue
			}
			if port.PublicPort > 0 {
				return fmt.Sprintf("http://127.0.0.1:%d", port.PublicPort), nil
			}
		}
	}
	return "", fmt.Errorf("no running localstack container publishes port %d", localstackEdgePort)
}
