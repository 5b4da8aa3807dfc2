package main

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/RyMaxim/deca/adf"
	"github.com/RyMaxim/deca/rtpc"
	"github.com/RyMaxim/deca/texture"
	"github.com/RyMaxim/deca/vfs"
	"github.com/RyMaxim/deca/webmap"
)

// InitTask 构建并执行地图任务
func InitTask() {
	start := time.Now()

	cfg, err := conf.webmapConfig()
	if err != nil {
		log.WithError(err).Error("invalid configuration")
		SafeExitInst.Exit(1)
	}
	if workDir != "" {
		cfg.WorkDir = workDir
	}
	if copySupport {
		cfg.CopySupport = true
	}

	archive, err := vfs.NewDirectory(conf.Archive.Root)
	if err != nil {
		log.WithError(err).Error("open archive")
		SafeExitInst.Exit(1)
	}

	task := webmap.NewTask(cfg, archive, adf.YAMLDecoder{}, rtpc.YAMLDecoder{}, texture.ImageDecoder{}, log)
	log.WithFields(logrus.Fields{
		"task":    task.ID,
		"archive": conf.Archive.Root,
		"output":  cfg.MapDir(),
	}).Infof("%s %s", conf.App.Title, conf.App.Version)

	sum, err := task.Run()
	if err != nil {
		log.WithError(err).Error("web map build failed")
		SafeExitInst.Exit(1)
	}
	for name, res := range sum.Pyramids {
		log.WithField("source", name).Infof("levels written %v, reused %v", res.Written, res.Skipped)
	}
	if sum.FailedNodes > 0 {
		log.Warnf("%d scene nodes skipped", sum.FailedNodes)
	}

	log.Printf("%.3fs finished...", time.Since(start).Seconds())
	SafeExitInst.Cleanup()
}
