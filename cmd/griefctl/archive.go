// Copyright (C) 2019-2025 Algorand, Inc.
// This file is part of go-griefing
//
// go-griefing is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-griefing is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-griefing.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/algorand/go-griefing/node"
	"github.com/algorand/go-griefing/util/s3"
)

var (
	archiveBucket     string
	archiveDeployment string
	archiveOut        string
)

func init() {
	archiveCmd.PersistentFlags().StringVarP(&archiveBucket, "bucket", "b", "", "S3 bucket holding the journal archives (default $S3_ARCHIVE_BUCKET)")
	archiveCmd.PersistentFlags().StringVar(&archiveDeployment, "deployment", "default", "Deployment name the archives are filed under")
	downloadCmd.Flags().StringVarP(&archiveOut, "out", "o", "", "File to write the archive to (default: base name of the archive)")

	archiveCmd.AddCommand(uploadCmd)
	archiveCmd.AddCommand(latestCmd)
	archiveCmd.AddCommand(downloadCmd)
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive the event journal to S3",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpFunc()(cmd, args)
	},
}

func archiveHelper(action string) s3.Helper {
	bucket := archiveBucket
	if bucket == "" {
		bucket = s3.GetS3ArchiveBucket()
	}
	helper, err := s3.MakeS3Session(action, bucket)
	if err != nil {
		reportErrorf("Cannot open S3 session: %v", err)
	}
	return helper
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload the journal entries newer than the latest archive",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		helper := archiveHelper("upload")
		after, prev, err := helper.LatestArchive(archiveDeployment)
		if err != nil {
			reportErrorf("Cannot list archives in %s: %v", helper.Bucket(), err)
		}
		if prev != "" {
			reportInfof("Latest archive %s", prev)
		}

		withNode(func(n *node.GriefingNode) {
			j := n.Journal()
			if j == nil {
				reportErrorln("The event journal is disabled (EnableEventJournal)")
			}
			tmp, err := os.CreateTemp("", "journal-*.jsonl")
			if err != nil {
				reportErrorf("Cannot create export file: %v", err)
			}
			defer os.Remove(tmp.Name())
			defer tmp.Close()

			last, err := j.Export(context.Background(), tmp, after)
			if err != nil {
				reportErrorf("Cannot export journal: %v", err)
			}
			if last == after {
				reportInfoln("Nothing to archive")
				return
			}
			if _, err := tmp.Seek(0, 0); err != nil {
				reportErrorf("Cannot rewind export file: %v", err)
			}
			name := s3.ArchiveName(archiveDeployment, last)
			if err := helper.UploadStream(name, tmp); err != nil {
				reportErrorf("Cannot upload %s: %v", name, err)
			}
			reportInfof("Uploaded events %d..%d to s3://%s/%s", after+1, last, helper.Bucket(), name)
		})
	},
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the latest archive of the deployment",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		helper := archiveHelper("latest")
		seq, name, err := helper.LatestArchive(archiveDeployment)
		if err != nil {
			reportErrorf("Cannot list archives in %s: %v", helper.Bucket(), err)
		}
		if name == "" {
			reportInfof("No archives for %s", archiveDeployment)
			return
		}
		reportInfof("%s\t%d", name, seq)
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [name]",
	Short: "Download an archive",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		helper := archiveHelper("download")
		out := archiveOut
		if out == "" {
			out = path.Base(args[0])
		}
		f, err := os.Create(out)
		if err != nil {
			reportErrorf("Cannot create %s: %v", out, err)
		}
		defer f.Close()
		if err := helper.DownloadArchive(args[0], f); err != nil {
			reportErrorf("Cannot download %s: %v", args[0], err)
		}
		reportInfof("Wrote %s", out)
	},
}
