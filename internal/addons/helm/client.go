package helm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-logr/logr"
	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/release"
	"helm.sh/helm/v3/pkg/repo"
	"helm.sh/helm/v3/pkg/storage/driver"
)

// DefaultTimeout bounds a single install or upgrade.
const DefaultTimeout = 10 * time.Minute

// Client provides Helm operations using in-memory kubeconfig.
type Client struct {
	namespace    string
	timeout      time.Duration
	log          logr.Logger
	actionConfig *action.Configuration
	getters      getter.Providers
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger routes Helm's debug output to log at V(2).
func WithLogger(log logr.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a Helm client for releases in namespace.
func NewClient(kubeconfig []byte, namespace string, opts ...Option) (*Client, error) {
	c := &Client{
		namespace: namespace,
		timeout:   DefaultTimeout,
		log:       logr.Discard(),
		getters:   getter.All(cli.New()),
	}
	for _, opt := range opts {
		opt(c)
	}

	actionConfig := new(action.Configuration)
	restGetter := NewInMemoryRESTClientGetter(kubeconfig, namespace)
	debug := func(format string, v ...any) {
		c.log.V(2).Info(fmt.Sprintf(format, v...))
	}
	if err := actionConfig.Init(restGetter, namespace, "secret", debug); err != nil {
		return nil, fmt.Errorf("failed to initialize helm action config: %w", err)
	}

	c.actionConfig = actionConfig
	return c, nil
}

// InstallOrUpgrade installs spec as releaseName, or upgrades the release
// when it already exists. It waits for the release's resources to be ready.
func (c *Client) InstallOrUpgrade(ctx context.Context, releaseName string, spec ChartSpec, values Values) (*release.Release, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	ch, err := c.loadChart(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart: %w", err)
	}

	exists, err := c.ReleaseExists(releaseName)
	if err != nil {
		return nil, err
	}
	if exists {
		c.log.Info("upgrading release", "release", releaseName, "chart", spec.String())
		return c.upgrade(ctx, releaseName, spec, ch, values)
	}
	c.log.Info("installing release", "release", releaseName, "chart", spec.String())
	return c.install(ctx, releaseName, spec, ch, values)
}

func (c *Client) install(ctx context.Context, releaseName string, spec ChartSpec, ch *chart.Chart, values Values) (*release.Release, error) {
	installClient := action.NewInstall(c.actionConfig)
	installClient.ReleaseName = releaseName
	installClient.Namespace = c.namespace
	installClient.CreateNamespace = true
	installClient.Version = spec.Version
	installClient.Wait = true
	installClient.Timeout = c.timeout

	rel, err := installClient.RunWithContext(ctx, ch, values)
	if err != nil {
		return nil, fmt.Errorf("failed to install %s: %w", releaseName, err)
	}
	return rel, nil
}

func (c *Client) upgrade(ctx context.Context, releaseName string, spec ChartSpec, ch *chart.Chart, values Values) (*release.Release, error) {
	upgradeClient := action.NewUpgrade(c.actionConfig)
	upgradeClient.Namespace = c.namespace
	upgradeClient.Version = spec.Version
	upgradeClient.Wait = true
	upgradeClient.Timeout = c.timeout
	upgradeClient.ReuseValues = false

	rel, err := upgradeClient.RunWithContext(ctx, releaseName, ch, values)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade %s: %w", releaseName, err)
	}
	return rel, nil
}

// loadChart resolves spec in its repository index and loads the archive
// straight from memory.
func (c *Client) loadChart(spec ChartSpec) (*chart.Chart, error) {
	chartURL, err := repo.FindChartInRepoURL(spec.Repository, spec.Name, spec.Version, "", "", "", c.getters)
	if err != nil {
		return nil, fmt.Errorf("failed to find chart %s: %w", spec, err)
	}

	u, err := url.Parse(chartURL)
	if err != nil {
		return nil, fmt.Errorf("invalid chart URL %q: %w", chartURL, err)
	}
	g, err := c.getters.ByScheme(u.Scheme)
	if err != nil {
		return nil, fmt.Errorf("no getter for %s: %w", chartURL, err)
	}

	buf, err := g.Get(chartURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", chartURL, err)
	}

	return loader.LoadArchive(bytes.NewReader(buf.Bytes()))
}

// Uninstall removes a Helm release.
func (c *Client) Uninstall(releaseName string) error {
	uninstallClient := action.NewUninstall(c.actionConfig)
	uninstallClient.Wait = true
	uninstallClient.Timeout = c.timeout

	_, err := uninstallClient.Run(releaseName)
	return err
}

// ReleaseExists reports whether releaseName has any recorded revision.
func (c *Client) ReleaseExists(releaseName string) (bool, error) {
	histClient := action.NewHistory(c.actionConfig)
	histClient.Max = 1
	_, err := histClient.Run(releaseName)
	if errors.Is(err, driver.ErrReleaseNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read history of %s: %w", releaseName, err)
	}
	return true, nil
}
