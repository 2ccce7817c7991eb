package model

// Package is one package record as returned by the AUR RPC v5 interface.
// Search results populate only a subset of the fields; info results carry
// the full set. JSON field names follow the AUR wire format.
type Package struct {
	ID             int      `json:"ID"`
	Name           string   `json:"Name"`
	PackageBase    string   `json:"PackageBase"`
	PackageBaseID  int      `json:"PackageBaseID"`
	Version        string   `json:"Version"`
	Description    string   `json:"Description"`
	URL            string   `json:"URL"`
	URLPath        string   `json:"URLPath"`
	Maintainer     string   `json:"Maintainer"`
	NumVotes       int      `json:"NumVotes"`
	Popularity     float64  `json:"Popularity"`
	OutOfDate      *int64   `json:"OutOfDate"`
	FirstSubmitted int64    `json:"FirstSubmitted"`
	LastModified   int64    `json:"LastModified"`
	Depends        []string `json:"Depends,omitempty"`
	MakeDepends    []string `json:"MakeDepends,omitempty"`
	CheckDepends   []string `json:"CheckDepends,omitempty"`
	OptDepends     []string `json:"OptDepends,omitempty"`
	Conflicts      []string `json:"Conflicts,omitempty"`
	Provides       []string `json:"Provides,omitempty"`
	Replaces       []string `json:"Replaces,omitempty"`
	Groups         []string `json:"Groups,omitempty"`
	License        []string `json:"License,omitempty"`
	Keywords       []string `json:"Keywords,omitempty"`
}
