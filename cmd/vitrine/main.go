// Command vitrine 提供取页 HTTP 服务与目录导入工具。
//
//	vitrine serve -c vitrine.yaml
//	vitrine import -c vitrine.yaml catalog.json
package main

import (
	"errors"
	"os"

	"github.com/jessevdk/go-flags"
)

// Options 是全局参数，子命令共享。
type Options struct {
	Config string `short:"c" long:"config" env:"VITRINE_CONFIG" description:"YAML config file (optional, VITRINE_* env vars override it)"`
}

var opts Options

func main() {
	parser := flags.NewParser(&opts, flags.Default)

	if _, err := parser.AddCommand("serve", "Start the HTTP server",
		"Serve feed pages, interactions, likes and search over HTTP.", &serveCommand{}); err != nil {
		panic(err)
	}
	if _, err := parser.AddCommand("import", "Import catalog rows and listings",
		"Load a JSON document {\"items\": [...], \"listings\": [...]} into the SQLite catalog.", &importCommand{}); err != nil {
		panic(err)
	}

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}
