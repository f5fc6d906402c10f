// Package localnet runs a disposable local chain node in Docker so
// deployments can be exercised without touching a public network.
package localnet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	"github.com/tokenforge/deployer/configs"
	"github.com/tokenforge/deployer/internal/logger"
)

const containerName = "tokenforge-localnode"

type Service struct {
	cli    *client.Client
	logger *slog.Logger
}

// New creates a Docker-backed localnet service.
func New() (*Service, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return &Service{
		cli:    cli,
		logger: logger.Named("localnet"),
	}, nil
}

func (s *Service) Close() error {
	return s.cli.Close()
}

// Start pulls the node image when missing and runs it with the RPC and
// faucet ports published on localhost.
func (s *Service) Start(ctx context.Context, cfg configs.Localnet) error {
	if err := s.ensureImage(ctx, cfg.Image); err != nil {
		return err
	}

	if id, err := s.findContainer(ctx); err != nil {
		return err
	} else if id != "" {
		return fmt.Errorf("localnet container already exists (%s); stop it first", id[:12])
	}

	rpcPort := nat.Port("8000/tcp")
	faucetPort := nat.Port("8001/tcp")

	containerConfig := &container.Config{
		Image: cfg.Image,
		ExposedPorts: nat.PortSet{
			rpcPort:    struct{}{},
			faucetPort: struct{}{},
		},
	}

	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			rpcPort:    []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: strconv.Itoa(cfg.RPCPort)}},
			faucetPort: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: strconv.Itoa(cfg.FaucetPort)}},
		},
	}

	resp, err := s.cli.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, containerName)
	if err != nil {
		return fmt.Errorf("failed to create localnet container: %w", err)
	}

	if err := s.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start localnet container: %w", err)
	}

	s.logger.
		With("container_id", resp.ID[:12]).
		With("rpc_port", cfg.RPCPort).
		Info("localnet node started")

	return nil
}

// Stop stops and removes the localnet container if one is running.
func (s *Service) Stop(ctx context.Context) error {
	id, err := s.findContainer(ctx)
	if err != nil {
		return err
	}
	if id == "" {
		s.logger.Info("no localnet container found")
		return nil
	}

	if err := s.cli.ContainerStop(ctx, id, container.StopOptions{}); err != nil {
		return fmt.Errorf("failed to stop localnet container: %w", err)
	}
	if err := s.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove localnet container: %w", err)
	}

	s.logger.With("container_id", id[:12]).Info("localnet node stopped")

	return nil
}

func (s *Service) ensureImage(ctx context.Context, ref string) error {
	_, err := s.cli.ImageInspect(ctx, ref)
	if err == nil {
		return nil
	}
	if !client.IsErrNotFound(err) {
		return fmt.Errorf("failed to inspect image %s: %w", ref, err)
	}

	s.logger.With("image", ref).Info("pulling localnet image")

	reader, err := s.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	defer reader.Close()

	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("error reading pull output: %w", err)
	}

	return nil
}

func (s *Service) findContainer(ctx context.Context) (string, error) {
	containers, err := s.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("name", containerName)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to list containers: %w", err)
	}

	if len(containers) == 0 {
		return "", nil
	}
	return containers[0].ID, nil
}
