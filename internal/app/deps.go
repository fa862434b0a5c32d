// Where: curstack/internal/app/deps.go
// What: Injected dependencies for CLI command execution.
// Why: Let tests swap the AWS-facing pieces for fakes.
package app

import (
	"context"
	"io"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/billingkit/curstack/internal/domain/stack"
	"github.com/billingkit/curstack/internal/infra/interaction"
	"github.com/billingkit/curstack/internal/infra/provision"
	"github.com/billingkit/curstack/internal/infra/stackcfg"
	"github.com/billingkit/curstack/internal/infra/state"
)

// Locker is the apply-lock surface the commands use.
type Locker interface {
	Acquire(ctx context.Context, bucketName string) error
	Release(ctx context.Context, bucketName string) error
}

// StateStore persists the identifiers an apply resolved.
type StateStore interface {
	Load(bucketName string) (state.Record, bool, error)
	Save(record state.Record) error
	Remove(bucketName string) error
}

// Dependencies holds all injected dependencies required for CLI command
// execution.
type Dependencies struct {
	Out        io.Writer
	LoadConfig func(path string) (stack.Config, error)
	RunnerFor  func(ctx context.Context, endpoint string) (*provision.Runner, error)
	LockFor    func(ctx context.Context, region, endpoint, table string) (Locker, error)
	Store      StateStore
	Confirm    func(message string) (bool, error)
}

// NewDefaultDependencies wires the production implementations.
func NewDefaultDependencies() Dependencies {
	out := os.Stdout
	return Dependencies{
		Out:        out,
		LoadConfig: stackcfg.Load,
		RunnerFor: func(ctx context.Context, endpoint string) (*provision.Runner, error) {
			resolved, err := resolveEndpoint(ctx, endpoint)
			if err != nil {
				return nil, err
			}
			runner := provision.New(provision.NewClientFactory(resolved))
			runner.Out = out
			return runner, nil
		},
		LockFor: func(ctx context.Context, region, endpoint, table string) (Locker, error) {
			resolved, err := resolveEndpoint(ctx, endpoint)
			if err != nil {
				return nil, err
			}
			cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
			if err != nil {
				return nil, err
			}
			return state.Lock{Client: state.NewLockClient(cfg, resolved), Table: table}, nil
		},
		Store:   state.Store{},
		Confirm: interaction.PromptYesNo,
	}
}

// resolveEndpoint expands the "auto" sentinel through Docker discovery and
// passes explicit values through untouched.
func resolveEndpoint(ctx context.Context, endpoint string) (string, error) {
	if endpoint != provision.AutoEndpoint {
		return endpoint, nil
	}
	dockerClient, err := provision.NewDockerClient()
	if err != nil {
		return "", err
	}
	defer dockerClient.Close()
	return provision.NewEndpointResolver(dockerClient).Resolve(ctx, endpoint)
}
