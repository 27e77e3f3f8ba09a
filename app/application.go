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

package app

import (
	"fmt"

	"github.com/SnellerInc/sneller/message"
	"github.com/SnellerInc/sneller/netw"
	"github.com/SnellerInc/sneller/store"
)

// Application binds one node's command-line arguments to its
// network handle and its running KV store. Every apps/* program
// receives one of these fully wired up and built, it only contains
// domain logic.
type Application struct {
	Args    *Arguments
	Network netw.Network
	Store   *store.Store
}

// NewTCPApplication brings up a real, one-process-per-node cluster
// member: it performs the rendezvous bring-up over TCP and starts
// the store's servicer before returning.
func NewTCPApplication(args *Arguments) (*Application, error) {
	net := netw.NewTCP(args.Self(), args.NumNodes, args.Rendezvous())
	if err := net.Register(args.Index); err != nil {
		return nil, fmt.Errorf("app.NewTCPApplication: %w", err)
	}
	st := store.New(net)
	go st.Serve()
	return &Application{Args: args, Network: net, Store: st}, nil
}

// NewPseudoCluster builds a whole cluster of args.NumNodes
// Applications in this one process, wired together over an
// InProcCluster, matching the "-pseudo" flag's single-process test
// mode. Each returned Application has a distinct Index but otherwise
// shares the given args.
func NewPseudoCluster(args *Arguments) []*Application {
	c := netw.NewInProcCluster(args.NumNodes)
	apps := make([]*Application, args.NumNodes)
	for i := 0; i < args.NumNodes; i++ {
		h := c.Handle(i)
		if err := h.Register(i); err != nil {
			panic(fmt.Sprintf("app.NewPseudoCluster: registering node %d: %v", i, err))
		}
		st := store.New(h)
		go st.Serve()
		nodeArgs := *args
		nodeArgs.Index = i
		apps[i] = &Application{Args: &nodeArgs, Network: h, Store: st}
	}
	return apps
}

// StopAll broadcasts a Kill to every other node in the cluster, then
// stops this node's own servicer. It is meant to be called once,
// typically by node 0 after the distributed computation it drives
// has finished.
func (a *Application) StopAll() {
	self := a.Store.Index()
	for i := 0; i < a.Args.NumNodes; i++ {
		if i == self {
			continue
		}
		if err := a.Network.Send(message.NewKill(self, i)); err != nil {
			fmt.Printf("app.StopAll: notifying node %d: %v\n", i, err)
		}
	}
	a.Store.StopService()
}

// Wait blocks until this node's servicer (and any waiter tasks it
// spawned) have returned.
func (a *Application) Wait() {
	a.Store.WaitToClose()
}
