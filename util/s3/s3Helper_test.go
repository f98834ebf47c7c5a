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

package s3

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-griefing/test/partitiontest"
)

func TestGetS3ArchiveBucket(t *testing.T) {
	partitiontest.PartitionTest(t)

	tests := []struct {
		name           string
		getDefault     bool
		wantBucketName string
	}{
		{name: "test1", wantBucketName: "test-bucket"},
		{name: "test2", wantBucketName: "anotherbucket"},
		{name: "test3", wantBucketName: ""},
		{name: "test4", getDefault: true, wantBucketName: "griefing-journal-archives"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.getDefault {
				t.Setenv("S3_ARCHIVE_BUCKET", "")
				require.NoError(t, os.Unsetenv("S3_ARCHIVE_BUCKET"))
			} else {
				t.Setenv("S3_ARCHIVE_BUCKET", tt.wantBucketName)
			}
			require.Equal(t, tt.wantBucketName, GetS3ArchiveBucket())
		})
	}
}

func TestGetS3Region(t *testing.T) {
	partitiontest.PartitionTest(t)

	t.Setenv("S3_REGION", "eu-west-1")
	require.Equal(t, "eu-west-1", getS3Region())
	require.NoError(t, os.Unsetenv("S3_REGION"))
	require.Equal(t, "us-east-1", getS3Region())
}

func TestValidateS3Params(t *testing.T) {
	partitiontest.PartitionTest(t)

	require.EqualError(t, validateS3Params("upload", "", "key", "bucket"),
		"unable to upload. Credentials must be specified in AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY")
	require.EqualError(t, validateS3Params("download", "id", "key", ""),
		"unable to download, bucket name is empty")
	require.NoError(t, validateS3Params("upload", "id", "key", "bucket"))
}

func TestMakeS3SessionNeedsCredentials(t *testing.T) {
	partitiontest.PartitionTest(t)

	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	_, err := MakeS3Session("upload", "bucket")
	require.Error(t, err)

	t.Setenv("AWS_ACCESS_KEY_ID", "id")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "key")
	helper, err := MakeS3Session("upload", "")
	require.NoError(t, err)
	require.Equal(t, GetS3ArchiveBucket(), helper.Bucket())
}

func TestArchiveNames(t *testing.T) {
	partitiontest.PartitionTest(t)

	name := ArchiveName("mainnet", 42)
	require.Equal(t, "mainnet/journal_00000000000000000042.jsonl", name)
	seq, err := SeqFromName(name)
	require.NoError(t, err)
	require.Equal(t, uint64(42), seq)

	require.Less(t, ArchiveName("d", 9), ArchiveName("d", 10))

	_, err = SeqFromName("mainnet/journal_latest.jsonl")
	require.Error(t, err)
	_, err = SeqFromName("mainnet/journal_12.sqlite")
	require.Error(t, err)
}
