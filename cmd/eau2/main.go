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

// Command eau2 launches a single node of an eau2 cluster (or, with
// -pseudo, an entire cluster in one process over in-memory queues)
// and runs one of the bundled applications against it.
package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/SnellerInc/sneller/app"
	"github.com/SnellerInc/sneller/apps/demo"
	"github.com/SnellerInc/sneller/apps/linus"
	"github.com/SnellerInc/sneller/apps/trivial"
	"github.com/SnellerInc/sneller/apps/wordcount"
)

const usage = `usage: eau2 -app <trivial|demo|wordcount|linus> [flags]

  -ip            this node's IP address (default 127.0.0.1)
  -port          this node's listening port (default 9000)
  -server_ip     the rendezvous node's IP address (default 127.0.0.1)
  -server_port   the rendezvous node's port (default 9000)
  -index         this node's index in the cluster (default 0)
  -num_nodes     total number of nodes in the cluster (default 1)
  -pseudo        run the whole cluster in this one process
  -app           which application to run
  -file          input file for wordcount/linus
`

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

func dispatch(name string, a *app.Application) error {
	switch name {
	case "trivial":
		return trivial.Run(a)
	case "demo":
		return demo.Run(a)
	case "wordcount":
		return wordcount.Run(a)
	case "linus":
		return linus.Run(a)
	default:
		return fmt.Errorf("unknown -app %q", name)
	}
}

func main() {
	args, err := app.ParseArguments(os.Args[1:])
	if err != nil {
		exitf("eau2: %s", err)
	}
	if args.Help {
		fmt.Fprint(os.Stderr, usage)
		return
	}

	if args.Pseudo {
		runPseudoArgs(args)
		return
	}

	a, err := app.NewTCPApplication(args)
	if err != nil {
		exitf("eau2: %s", err)
	}
	if err := dispatch(args.App, a); err != nil {
		exitf("eau2: %s", err)
	}
	if a.Store.Index() == 0 {
		a.StopAll()
	}
	a.Wait()
}

// runPseudoArgs builds the whole cluster named by args.NumNodes in
// this one process and runs the chosen application on every node
// concurrently, which is what -pseudo is for: exercising the full
// protocol without needing separate processes or real sockets.
func runPseudoArgs(args *app.Arguments) {
	apps := app.NewPseudoCluster(args)

	var wg sync.WaitGroup
	errs := make([]error, len(apps))
	for i, a := range apps {
		wg.Add(1)
		go func(i int, a *app.Application) {
			defer wg.Done()
			errs[i] = dispatch(args.App, a)
		}(i, a)
	}
	wg.Wait()

	apps[0].StopAll()
	for _, a := range apps {
		a.Wait()
	}

	for i, err := range errs {
		if err != nil {
			exitf("eau2: node %d: %s", i, err)
		}
	}
}
