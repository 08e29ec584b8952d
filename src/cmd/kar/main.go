// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"io/ioutil"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/devblok/vkboot/src/utility/kar"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/mmap"
)

func init() {
	if u, err := user.Current(); err == nil {
		currentUserName = u.Name
	} else {
		currentUserName = "unknown"
	}
}

var (
	currentUserName string
	author          = flag.String("author", "", "Set the author of the package when compressing")
	version         = flag.Int64("version", 1, "Archive version number to create it with")
	extract         = flag.String("e", "", "Extract the file given")
	compress        = flag.String("c", "", "Compress the given file/folder")
	dstFile         = flag.String("f", "out.kar", "Destination file, or directory when extracting")
	silent          = flag.Bool("s", false, "Silent")
)

func main() {
	var opMade bool
	flag.Parse()

	if *silent {
		log.SetLevel(log.WarnLevel)
	}

	if *extract != "" && *compress != "" {
		log.Fatal("only one operation at a time")
	}

	if *extract != "" {
		opMade = true
		if err := extractFiles(); err != nil {
			log.WithError(err).Fatal("extract failed")
		}
	}

	if *compress != "" {
		opMade = true
		if err := compressFiles(); err != nil {
			log.WithError(err).Fatal("compress failed")
		}
	}

	if !opMade {
		flag.PrintDefaults()
	}
}

func compressFiles() error {
	if _, err := os.Stat(*dstFile); err == nil {
		return errors.New("destination file exists, will not overwrite")
	}

	var filesToCompress []string
	if err := filepath.Walk(*compress, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		filesToCompress = append(filesToCompress, path)
		return nil
	}); err != nil {
		return errors.Wrap(err, "filepath.Walk()")
	}

	name := *author
	if name == "" {
		name = currentUserName
	}
	karBuilder, err := kar.NewBuilder(kar.Header{
		Author:      name,
		DateCreated: time.Now().Unix(),
		Version:     *version,
	})
	if err != nil {
		return err
	}
	defer karBuilder.Close()

	for _, ftc := range filesToCompress {
		rel, err := filepath.Rel(*compress, ftc)
		if err != nil || rel == "." {
			rel = filepath.Base(ftc)
		}
		if err := addFile(karBuilder, filepath.ToSlash(rel), ftc); err != nil {
			return err
		}
		log.WithField("file", rel).Info("added")
	}

	dst, err := os.Create(*dstFile)
	if err != nil {
		return err
	}
	defer dst.Close()

	written, err := karBuilder.WriteTo(dst)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"files": karBuilder.Len(), "bytes": written}).Info("archive written")
	return nil
}

func addFile(b *kar.Builder, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return b.Add(name, f)
}

func extractFiles() error {
	r, err := mmap.Open(*extract)
	if err != nil {
		return errors.Wrap(err, "mmap.Open()")
	}
	defer r.Close()

	archive, err := kar.Open(r)
	if err != nil {
		return err
	}

	dir := *dstFile
	if dir == "out.kar" {
		dir = "."
	}
	for _, name := range archive.Files() {
		data, err := archive.ReadAll(name)
		if err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(name))
		if rel, err := filepath.Rel(dir, target); err != nil || strings.HasPrefix(rel, "..") {
			return errors.Errorf("%s points outside of %s", name, dir)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := ioutil.WriteFile(target, data, 0644); err != nil {
			return err
		}
		log.WithField("file", target).Info("extracted")
	}
	return nil
}
