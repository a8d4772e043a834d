// Command resolverd loads a component catalog, constructs its startup
// components and keeps them running until it is told to stop.
//
//	resolverd serve --catalog catalog.yaml
//	resolverd check --catalog catalog.yaml
//	resolverd resolve "banner#hello" "db-primary|db-replica"
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
