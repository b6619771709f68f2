// Package cli wires the arr-quality command: flags and positional arguments
// become a ConnectionIR and a DesiredState, and the run outcome becomes the
// process exit code.
package cli

import (
	"context"
	goflag "flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/poiley/arr-quality/internal/adapters"
	"github.com/poiley/arr-quality/internal/adapters/execclient"
	"github.com/poiley/arr-quality/internal/adapters/httpclient"
	"github.com/poiley/arr-quality/internal/discovery"
	irv1 "github.com/poiley/arr-quality/internal/ir/v1"
	"github.com/poiley/arr-quality/internal/metrics"
	"github.com/poiley/arr-quality/internal/presets"
	"github.com/poiley/arr-quality/internal/reconcile"
)

// Options holds every flag value.
type Options struct {
	Transport          string
	APIBase            string
	Scheme             string
	Namespace          string
	Container          string
	InsecureSkipVerify bool
	Timeout            time.Duration

	Preset     string
	ConfigFile string

	APIKeyPaths      []string
	DiscoveryTimeout time.Duration

	MetricsTextfile string

	Zap zap.Options
}

// RegisterTransports installs the built-in transport factories. Existing
// registrations are replaced, so tests can call it freely.
func RegisterTransports() {
	adapters.RegisterOrReplace(adapters.TransportHTTP, httpclient.NewFromConnection)
	adapters.RegisterOrReplace(adapters.TransportDocker, execclient.NewFromConnection)
	adapters.RegisterOrReplace(adapters.TransportKube, execclient.NewFromConnection)
}

// Execute runs the command with args and returns the process exit code.
// Failures are written to stderr.
func Execute(ctx context.Context, args []string, stderr io.Writer) int {
	code := reconcile.ExitFailed
	cmd := NewCommand(&code)
	cmd.SetArgs(args)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		return reconcile.ExitFailed
	}
	return code
}

// NewCommand builds the root command. The run's exit code is stored in code.
func NewCommand(code *int) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "arr-quality <target> <port> <api-key>",
		Short: "Ensure a custom format and a derived quality profile exist in Radarr or Sonarr",
		Long: `arr-quality makes sure an *arr service has a custom format and a quality
profile cloned from a template profile. Existing resources are found by name
and never modified, so repeated runs converge and then report no change.

<target> is a container name (docker), [namespace/]pod (kube) or host (http).
<api-key> may be "auto" to read it from the service's config.xml (docker, kube).

Exit status: 0 nothing changed, 2 something was created, 1 failure.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logf.SetLogger(zap.New(zap.UseFlagOptions(&opts.Zap), zap.WriteTo(cmd.ErrOrStderr())))

			outcome, err := Run(cmd.Context(), opts, args)
			*code = outcome.ExitCode()
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Transport, "transport", adapters.TransportDocker, "how to reach the service: docker, kube or http")
	flags.StringVar(&opts.APIBase, "api-base", irv1.DefaultAPIBase, "API path prefix")
	flags.StringVar(&opts.Scheme, "scheme", "http", "URL scheme for the http transport")
	flags.StringVar(&opts.Namespace, "namespace", "", "pod namespace for the kube transport (default \"default\")")
	flags.StringVar(&opts.Container, "container", "", "container within the pod for the kube transport")
	flags.BoolVar(&opts.InsecureSkipVerify, "insecure-skip-verify", false, "skip TLS verification for the http transport")
	flags.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "per-request timeout for the http transport")
	flags.StringVar(&opts.Preset, "preset", presets.DefaultPreset, fmt.Sprintf("built-in desired state %v", presets.Names()))
	flags.StringVar(&opts.ConfigFile, "config", "", "YAML desired-state file, applied over its base preset")
	flags.StringSliceVar(&opts.APIKeyPaths, "api-key-path", nil, "config.xml paths to try when <api-key> is \"auto\"")
	flags.DurationVar(&opts.DiscoveryTimeout, "discovery-timeout", 0, "keep retrying API key discovery this long (0 tries once)")
	flags.StringVar(&opts.MetricsTextfile, "metrics-textfile", "", "write run metrics to this file in Prometheus textfile format")

	goFlags := goflag.NewFlagSet("arr-quality", goflag.ContinueOnError)
	opts.Zap.BindFlags(goFlags)
	if kubeconfig := goflag.CommandLine.Lookup("kubeconfig"); kubeconfig != nil {
		goFlags.Var(kubeconfig.Value, kubeconfig.Name, kubeconfig.Usage)
	}
	flags.AddGoFlagSet(goFlags)

	return cmd
}

// Run performs one convergence pass. The outcome is OutcomeFailed whenever
// err is non-nil.
func Run(ctx context.Context, opts *Options, args []string) (reconcile.Outcome, error) {
	log := logf.Log.WithName("arr-quality")
	ctx = logf.IntoContext(ctx, log)

	conn, err := connectionFromArgs(opts, args)
	if err != nil {
		return reconcile.OutcomeFailed, err
	}

	desired, err := desiredState(opts)
	if err != nil {
		return reconcile.OutcomeFailed, err
	}

	recorder := metrics.NewRecorder(conn.Transport)
	defer writeMetrics(log, opts.MetricsTextfile)

	// every return past this point leaves a run sample in the textfile
	fail := func(err error) (reconcile.Outcome, error) {
		recorder.RecordError(err)
		recorder.RecordRun(string(reconcile.OutcomeFailed), 0)
		return reconcile.OutcomeFailed, err
	}

	if conn.APIKey == discovery.AutoAPIKey {
		key, err := discoverAPIKey(ctx, opts, conn)
		if err != nil {
			return fail(err)
		}
		conn.APIKey = key
	}

	if err := conn.Validate(); err != nil {
		return fail(err)
	}

	factory, ok := adapters.Get(conn.Transport)
	if !ok {
		return fail(fmt.Errorf("unknown transport %q (available: %v)", conn.Transport, adapters.List()))
	}
	client, err := factory(ctx, conn)
	if err != nil {
		return fail(fmt.Errorf("failed to create %s client: %w", conn.Transport, err))
	}

	log.Info("Starting reconciliation",
		"transport", conn.Transport, "target", conn.Target, "port", conn.Port, "desired", desired.Source)

	coordinator := &reconcile.Coordinator{
		Client:   client,
		Desired:  desired,
		Recorder: recorder,
	}
	res := coordinator.Run(ctx)
	recorder.RecordError(res.Err)

	return res.Outcome, res.Err
}

func connectionFromArgs(opts *Options, args []string) (*irv1.ConnectionIR, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("expected <target> <port> <api-key>, got %d arguments", len(args))
	}
	port, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", args[1], err)
	}

	switch opts.Transport {
	case adapters.TransportHTTP, adapters.TransportDocker, adapters.TransportKube:
	default:
		return nil, fmt.Errorf("unknown transport %q, expected docker, kube or http", opts.Transport)
	}

	return &irv1.ConnectionIR{
		Transport:          opts.Transport,
		Target:             args[0],
		Port:               port,
		APIKey:             args[2],
		APIBase:            opts.APIBase,
		Scheme:             opts.Scheme,
		Namespace:          opts.Namespace,
		Container:          opts.Container,
		InsecureSkipVerify: opts.InsecureSkipVerify,
		Timeout:            opts.Timeout,
	}, nil
}

func desiredState(opts *Options) (irv1.DesiredState, error) {
	if opts.ConfigFile != "" {
		return presets.LoadFile(opts.ConfigFile)
	}
	state, ok := presets.Get(opts.Preset)
	if !ok {
		return irv1.DesiredState{}, fmt.Errorf("unknown preset %q (available: %v)", opts.Preset, presets.Names())
	}
	return state, nil
}

func discoverAPIKey(ctx context.Context, opts *Options, conn *irv1.ConnectionIR) (string, error) {
	if conn.Transport == adapters.TransportHTTP {
		return "", fmt.Errorf("API key discovery needs the docker or kube transport")
	}
	exec, err := execclient.NewExecutor(conn)
	if err != nil {
		return "", err
	}
	if opts.DiscoveryTimeout > 0 {
		return discovery.WaitForAPIKey(ctx, exec, discovery.DefaultPollInterval, opts.DiscoveryTimeout, opts.APIKeyPaths...)
	}
	return discovery.DiscoverAPIKey(ctx, exec, opts.APIKeyPaths...)
}

func writeMetrics(log logr.Logger, path string) {
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		log.Error(err, "Failed to write metrics", "path", path)
	}
}
