// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package app wires the store, network, and distributed DataFrame
// layers into a runnable node: command-line argument parsing,
// cluster bring-up, and the shutdown broadcast every app uses to
// tear the cluster down in concert.
package app

import (
	"flag"
	"fmt"
)

// Arguments holds a parsed command line for an eau2 node, per
// spec.md's node-launch flags.
type Arguments struct {
	IP         string
	Port       int
	ServerIP   string
	ServerPort int
	Index      int
	NumNodes   int
	Pseudo     bool
	App        string
	File       string
	Help       bool
}

// ParseArguments parses argv (excluding the program name) into an
// Arguments. It uses its own FlagSet rather than flag.CommandLine so
// it can be called more than once in a test process.
func ParseArguments(argv []string) (*Arguments, error) {
	a := &Arguments{}
	fs := flag.NewFlagSet("eau2", flag.ContinueOnError)
	fs.StringVar(&a.IP, "ip", "127.0.0.1", "this node's IP address")
	fs.IntVar(&a.Port, "port", 9000, "this node's listening port")
	fs.StringVar(&a.ServerIP, "server_ip", "127.0.0.1", "the rendezvous node's IP address")
	fs.IntVar(&a.ServerPort, "server_port", 9000, "the rendezvous node's port")
	fs.IntVar(&a.Index, "index", 0, "this node's index in the cluster (0 is the rendezvous node)")
	fs.IntVar(&a.NumNodes, "num_nodes", 1, "total number of nodes in the cluster")
	fs.BoolVar(&a.Pseudo, "pseudo", false, "run a pseudo-cluster in one process over in-memory queues")
	fs.StringVar(&a.App, "app", "", "which application to run: trivial, demo, wordcount, or linus")
	fs.StringVar(&a.File, "file", "", "input file: plain text for wordcount, a SoR file for linus")
	fs.BoolVar(&a.Help, "h", false, "show usage and exit")
	if err := fs.Parse(argv); err != nil {
		return nil, err
	}
	if a.Help {
		return a, nil
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Arguments) validate() error {
	if a.NumNodes < 1 {
		return fmt.Errorf("app.Arguments: -num_nodes must be at least 1, got %d", a.NumNodes)
	}
	if a.Index < 0 || a.Index >= a.NumNodes {
		return fmt.Errorf("app.Arguments: -index %d out of range [0, %d)", a.Index, a.NumNodes)
	}
	if a.App == "" {
		return fmt.Errorf("app.Arguments: -app is required")
	}
	return nil
}

// Self returns this node's "host:port" listening address.
func (a *Arguments) Self() string { return fmt.Sprintf("%s:%d", a.IP, a.Port) }

// Rendezvous returns the cluster's rendezvous "host:port" address.
func (a *Arguments) Rendezvous() string { return fmt.Sprintf("%s:%d", a.ServerIP, a.ServerPort) }
