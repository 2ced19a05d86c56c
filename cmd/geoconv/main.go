package main

import (
	"os"

	"github.com/woozymasta/geoanchor/internal/logger"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Output string `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" choice:"geojson" default:"json"`
	Minify bool   `short:"m" long:"minify" description:"Minify JSON and GeoJSON output"`
}

var opts Options

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		opts.Logger.Setup()
		return cmd.Execute(args)
	}

	mustAddCommand(parser, "ecef", "WGS84 to ECEF",
		"Convert a geodetic latitude, longitude and altitude to ECEF meters.", &ecefCommand{})
	mustAddCommand(parser, "wgs84", "ECEF to WGS84",
		"Convert ECEF meters to geodetic latitude, longitude and altitude.", &wgs84Command{})
	mustAddCommand(parser, "local", "WGS84 to calibrated local frame",
		"Project a WGS84 point into the render frame calibrated at the given origin and heading.", &localCommand{})
	mustAddCommand(parser, "origin", "Content origin from a transform",
		"Extract the WGS84 origin from a 16-element column-major transform, optionally projecting it.", &originCommand{})

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func mustAddCommand(p *flags.Parser, name, short, long string, data any) {
	if _, err := p.AddCommand(name, short, long, data); err != nil {
		panic(err)
	}
}
