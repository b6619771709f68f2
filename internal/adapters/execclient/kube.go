package execclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"
	utilexec "k8s.io/client-go/util/exec"
	ctrlconfig "sigs.k8s.io/controller-runtime/pkg/client/config"
)

// DefaultNamespace is used when a kube target names no namespace.
const DefaultNamespace = "default"

// KubeExecutor runs commands in a pod through the pods/exec subresource.
type KubeExecutor struct {
	config    *rest.Config
	clientset kubernetes.Interface
	pod       types.NamespacedName
	container string
}

var _ Executor = (*KubeExecutor)(nil)

// NewKubeExecutor creates an executor for a pod. container may be empty for
// single-container pods.
func NewKubeExecutor(cfg *rest.Config, pod types.NamespacedName, container string) (*KubeExecutor, error) {
	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return &KubeExecutor{
		config:    cfg,
		clientset: clientset,
		pod:       pod,
		container: container,
	}, nil
}

// NewKubeExecutorForTarget resolves the rest config the way controller-runtime
// does (--kubeconfig, KUBECONFIG, in-cluster, ~/.kube/config) and targets
// "[namespace/]pod".
func NewKubeExecutorForTarget(target, namespace, container string) (*KubeExecutor, error) {
	pod, err := ParseKubeTarget(target, namespace)
	if err != nil {
		return nil, err
	}
	cfg, err := ctrlconfig.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubernetes config: %w", err)
	}
	return NewKubeExecutor(cfg, pod, container)
}

// ParseKubeTarget splits "namespace/pod" or "pod" into a NamespacedName.
func ParseKubeTarget(target, namespace string) (types.NamespacedName, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	parts := strings.Split(target, "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return types.NamespacedName{Namespace: namespace, Name: parts[0]}, nil
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return types.NamespacedName{Namespace: parts[0], Name: parts[1]}, nil
	default:
		return types.NamespacedName{}, fmt.Errorf("invalid pod target %q, expected [namespace/]pod", target)
	}
}

// Exec runs cmd in the pod and waits for it to exit.
func (k *KubeExecutor) Exec(ctx context.Context, cmd []string, stdin io.Reader) ([]byte, []byte, error) {
	req := k.clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Namespace(k.pod.Namespace).
		Name(k.pod.Name).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: k.container,
			Command:   cmd,
			Stdin:     stdin != nil,
			Stdout:    true,
			Stderr:    true,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(k.config, http.MethodPost, req.URL())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create executor for pod %s: %w", k.pod, err)
	}

	var stdout, stderr bytes.Buffer
	err = executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdin:  stdin,
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		var exitErr utilexec.ExitError
		if errors.As(err, &exitErr) && exitErr.Exited() {
			return stdout.Bytes(), stderr.Bytes(), &ExitError{Code: exitErr.ExitStatus(), Stderr: stderr.String()}
		}
		return nil, nil, fmt.Errorf("exec in pod %s failed: %w", k.pod, err)
	}

	return stdout.Bytes(), stderr.Bytes(), nil
}
