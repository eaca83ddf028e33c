package resource

import "strings"

// Name identifies one resource instance: an API plus an instance name, optionally
// qualified by the remote(s) it was pulled in through (spec.md §3 "ResourceName").
// Equality is structural.
type Name struct {
	API    API    `json:"api"`
	Remote string `json:"remote"`
	Name   string `json:"name"`
}

// NewName builds a Name from an API and a possibly remote-qualified instance name,
// e.g. "remoteA:remoteB:cam-1" splits into Remote="remoteA:remoteB", Name="cam-1".
func NewName(api API, nameString string) Name {
	remote, short := splitRemote(nameString)
	return Name{API: api, Remote: remote, Name: short}
}

func splitRemote(nameString string) (remote, short string) {
	idx := strings.LastIndex(nameString, ":")
	if idx < 0 {
		return "", nameString
	}
	return nameString[:idx], nameString[idx+1:]
}

// ShortName returns the instance name without any remote qualification.
func (n Name) ShortName() string {
	return n.Name
}

// String returns the fully remote-qualified instance name.
func (n Name) String() string {
	if n.Remote == "" {
		return n.Name
	}
	return n.Remote + ":" + n.Name
}

// ContainingRemoteID returns the outermost remote this name was pulled through, or
// "" if the resource is local.
func (n Name) ContainingRemoteID() string {
	if n.Remote == "" {
		return ""
	}
	parts := strings.Split(n.Remote, ":")
	return parts[0]
}
