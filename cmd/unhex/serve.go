package main

import (
	"github.com/spf13/cobra"

	"unhex/internal/ctxlog"
	"unhex/internal/rec"
	"unhex/internal/server"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var port int

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the decoder over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			defer rec.Error(&err)

			ctx, config, logCloser, err := setup(cmd, g)
			if err != nil {
				return err
			}
			defer ctxlog.Close(ctx, "log file", logCloser)

			if cmd.Flags().Changed("port") {
				config.Server.Port = port
			}

			logger := ctxlog.Get(ctx)
			logger.Info("starting server")
			srv := server.New(config.Server, config.Decode)

			err = srv.Run(ctx)
			if err != nil {
				logger.Error("server stopped unexpectedly", "error", err)
				return err
			}
			logger.Info("server gracefully stopped")
			return nil
		},
	}

	c.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return c
}
