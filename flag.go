package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	hf          bool
	copySupport bool
	configPath  string
	logLevel    string
	workDir     string
)

func InitFlag() {
	flag.BoolVar(&hf, "h", false, "this help")
	flag.StringVar(&configPath, "c", "./conf/conf.toml", "set config `file`")
	flag.StringVar(&logLevel, "l", "info", "set log level (default: info)")
	flag.StringVar(&workDir, "w", "", "override the working `directory`")
	flag.BoolVar(&copySupport, "copy", false, "copy the viewer pages into the map directory")
	// 覆盖默认的 Usage
	flag.Usage = usage
	flag.Parse()

	if hf {
		flag.Usage()
		os.Exit(0)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `deca version: deca/v0.1.0
Usage: deca [-h] [-c filename] [-l logLevel] [-w directory] [-copy]
`)
	flag.PrintDefaults()
}
