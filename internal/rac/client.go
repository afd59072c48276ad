package rac

import (
	"context"

	"github.com/onecst/onecst/internal/errors"
	"github.com/onecst/onecst/internal/process"
)

// Credentials is an optional administrator login. Empty fields are omitted
// from the argument list.
type Credentials struct {
	User     string
	Password string
}

func (c Credentials) args(prefix string) []string {
	var args []string
	if c.User != "" {
		args = append(args, "--"+prefix+"-user="+c.User)
	}
	if c.Password != "" {
		args = append(args, "--"+prefix+"-pwd="+c.Password)
	}
	return args
}

// Client issues administrative commands through the rac executable.
type Client struct {
	runner   process.Runner
	path     string
	cluster  Credentials
	infobase Credentials
}

// NewClient creates a Client running the executable at path.
func NewClient(runner process.Runner, path string, cluster, infobase Credentials) *Client {
	return &Client{
		runner:   runner,
		path:     path,
		cluster:  cluster,
		infobase: infobase,
	}
}

// Path returns the executable the client runs.
func (c *Client) Path() string {
	return c.path
}

// Clusters lists the clusters registered with the administration service.
func (c *Client) Clusters(ctx context.Context) ([]Cluster, error) {
	out, err := c.run(ctx, "cluster list", "cluster", "list")
	if err != nil {
		return nil, err
	}
	return ParseClusters(out), nil
}

// Infobases lists the infobases of a cluster.
func (c *Client) Infobases(ctx context.Context, clusterID string) ([]Infobase, error) {
	args := append([]string{"infobase", "summary", "list", "--cluster=" + clusterID}, c.cluster.args("cluster")...)
	out, err := c.run(ctx, "infobase summary list", args...)
	if err != nil {
		return nil, err
	}
	return ParseInfobases(out), nil
}

// Sessions lists the sessions of a cluster.
func (c *Client) Sessions(ctx context.Context, clusterID string) ([]Session, error) {
	args := append([]string{"session", "list", "--cluster=" + clusterID}, c.cluster.args("cluster")...)
	out, err := c.run(ctx, "session list", args...)
	if err != nil {
		return nil, err
	}
	return ParseSessions(out), nil
}

// TerminateSession terminates a session. The trailing "f" on the session
// identifier is part of the administrative client's contract.
func (c *Client) TerminateSession(ctx context.Context, clusterID, sessionID string) error {
	args := append([]string{"session", "terminate", "--session=" + sessionID + "f", "--cluster=" + clusterID}, c.cluster.args("cluster")...)
	_, err := c.run(ctx, "session terminate", args...)
	return err
}

// SetScheduledJobsDenied denies or allows scheduled jobs of an infobase.
func (c *Client) SetScheduledJobsDenied(ctx context.Context, clusterID, infobaseID string, deny bool) error {
	state := "off"
	if deny {
		state = "on"
	}
	args := []string{"infobase", "update", "--cluster=" + clusterID, "--infobase=" + infobaseID}
	args = append(args, c.cluster.args("cluster")...)
	args = append(args, c.infobase.args("infobase")...)
	args = append(args, "--scheduled-jobs-deny="+state)
	_, err := c.run(ctx, "infobase update", args...)
	return err
}

func (c *Client) run(ctx context.Context, op string, args ...string) (string, error) {
	out, err := c.runner.Run(ctx, c.path, args...)
	if err != nil {
		return "", errors.Wrap(err, op)
	}
	return out, nil
}
