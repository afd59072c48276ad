// Package rac drives the administrative client: it builds the argument lists
// for every command and parses the "key : value" blocks the client prints.
package rac

import (
	"fmt"
	"strings"
)

// DefaultExcludedApps are the application identifiers of sessions that are
// left alone unless every session is to be terminated.
var DefaultExcludedApps = []string{"BackgroundJob", "COMConnection"}

// Cluster is one entry of "cluster list".
type Cluster struct {
	ID   string
	Host string
	Port string
	Name string
}

func (c Cluster) String() string {
	return fmt.Sprintf("[%s, %s, %s, %s]", c.ID, c.Host, c.Port, c.Name)
}

// Infobase is one entry of "infobase summary list".
type Infobase struct {
	ID          string
	Name        string
	Description string
}

func (i Infobase) String() string {
	return fmt.Sprintf("[%s, %s]", i.ID, i.Name)
}

// Session is one entry of "session list".
type Session struct {
	ID       string
	UserName string
	Host     string
	AppID    string
}

func (s Session) String() string {
	return fmt.Sprintf("[%s, %s, %s, %s]", s.ID, s.Host, s.UserName, s.AppID)
}

// shape describes one record kind: the keys collected into it and the key
// whose appearance emits the record.
type shape struct {
	keys    []string
	closing string
}

var (
	clusterShape  = shape{keys: []string{"cluster", "host", "port"}, closing: "name"}
	infobaseShape = shape{keys: []string{"infobase", "name"}, closing: "descr"}
	sessionShape  = shape{keys: []string{"session", "user-name", "host"}, closing: "app-id"}
)

// parse walks text line by line. Lines without ':' are skipped; the rest are
// split at the first ':' into a trimmed key and value. Values of recognized
// keys are kept across records, so a block that omits a key inherits the
// previous block's value. A record is built each time the closing key is seen.
func parse[T any](text string, s shape, build func(fields map[string]string) T) []T {
	fields := make(map[string]string, len(s.keys)+1)
	known := make(map[string]bool, len(s.keys)+1)
	for _, k := range s.keys {
		known[k] = true
	}
	known[s.closing] = true

	var records []T
	for _, line := range strings.Split(text, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if !known[key] {
			continue
		}
		fields[key] = strings.TrimSpace(value)
		if key == s.closing {
			records = append(records, build(fields))
		}
	}
	return records
}

// ParseClusters parses the output of "cluster list".
func ParseClusters(text string) []Cluster {
	return parse(text, clusterShape, func(f map[string]string) Cluster {
		return Cluster{ID: f["cluster"], Host: f["host"], Port: f["port"], Name: f["name"]}
	})
}

// ParseInfobases parses the output of "infobase summary list".
func ParseInfobases(text string) []Infobase {
	return parse(text, infobaseShape, func(f map[string]string) Infobase {
		return Infobase{ID: f["infobase"], Name: f["name"], Description: f["descr"]}
	})
}

// ParseSessions parses the output of "session list".
func ParseSessions(text string) []Session {
	return parse(text, sessionShape, func(f map[string]string) Session {
		return Session{ID: f["session"], UserName: f["user-name"], Host: f["host"], AppID: f["app-id"]}
	})
}
