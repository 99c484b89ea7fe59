// package main is a module with an mcp3428 sensor component
package main

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/viam-labs/mcp3428/mcp3428module"
	"go.viam.com/rdk/components/sensor"
	"go.viam.com/rdk/module"
	"go.viam.com/utils"
)

func main() {
	utils.ContextualMain(mainWithArgs, golog.NewDevelopmentLogger("mcp3428"))
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	mcp3428Module, err := module.NewModuleFromArgs(ctx, logger)
	if err != nil {
		return err
	}

	if err := mcp3428Module.AddModelFromRegistry(ctx, sensor.API, mcp3428module.Model); err != nil {
		return err
	}

	err = mcp3428Module.Start(ctx)
	defer mcp3428Module.Close(ctx)
	if err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}
