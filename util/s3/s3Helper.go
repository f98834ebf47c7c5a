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

// Package s3 stores journal archives in an S3 bucket.
package s3

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

const s3DefaultArchiveBucket = "griefing-journal-archives"
const s3DefaultRegion = "us-east-1"

// archiveSuffix ends every archive name.
const archiveSuffix = ".jsonl"

var archiveNameRe = regexp.MustCompile(`_(\d+)\.jsonl$`)

// Helper encapsulates the s3 session state for one archive bucket.
type Helper struct {
	session *session.Session
	bucket  string
}

// GetS3ArchiveBucket returns the archive bucket from S3_ARCHIVE_BUCKET.
func GetS3ArchiveBucket() (bucketName string) {
	bucketName, found := os.LookupEnv("S3_ARCHIVE_BUCKET")
	if !found {
		bucketName = s3DefaultArchiveBucket
	}
	return
}

func getS3Region() (region string) {
	region, found := os.LookupEnv("S3_REGION")
	if !found {
		region = s3DefaultRegion
	}
	return
}

func getAWSCredentials() (awsID string, awsKey string) {
	awsID, _ = os.LookupEnv("AWS_ACCESS_KEY_ID")
	awsKey, _ = os.LookupEnv("AWS_SECRET_ACCESS_KEY")
	return
}

func validateS3Params(action string, awsID string, awsKey string, awsBucket string) (err error) {
	if awsID == "" || awsKey == "" {
		err = fmt.Errorf("unable to %s. Credentials must be specified in AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY", action)
		return
	}
	if awsBucket == "" {
		err = fmt.Errorf("unable to %s, bucket name is empty", action)
		return
	}
	return
}

// MakeS3Session returns a Helper for awsBucket, or for the default archive
// bucket when awsBucket is empty.
func MakeS3Session(action string, awsBucket string) (helper Helper, err error) {
	awsID, awsKey := getAWSCredentials()
	if awsBucket == "" {
		awsBucket = GetS3ArchiveBucket()
	}
	err = validateS3Params(action, awsID, awsKey, awsBucket)
	if err != nil {
		return
	}
	creds := credentials.NewStaticCredentials(awsID, awsKey, "")
	sess, err := session.NewSession(&aws.Config{Region: aws.String(getS3Region()), Credentials: creds})
	if err != nil {
		return
	}
	return Helper{session: sess, bucket: awsBucket}, nil
}

// Bucket returns the bucket the helper talks to.
func (helper *Helper) Bucket() string {
	return helper.bucket
}

// ArchiveName returns the object name of the archive of deployment that
// ends at seq. Names sort by seq within a deployment.
func ArchiveName(deployment string, seq uint64) string {
	return path.Join(deployment, fmt.Sprintf("journal_%020d%s", seq, archiveSuffix))
}

// SeqFromName returns the last seq recorded in the archive called name.
func SeqFromName(name string) (seq uint64, err error) {
	m := archiveNameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, errors.New("unable to parse seq from archive name " + name)
	}
	return strconv.ParseUint(m[1], 10, 64)
}

// UploadStream sends the archive read from reader to s3 under name.
func (helper *Helper) UploadStream(name string, reader io.Reader) error {
	uploader := s3manager.NewUploader(helper.session)
	_, err := uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(helper.bucket),
		Key:    aws.String(name),
		Body:   reader,
	})
	return err
}

// LatestArchive returns the archive of deployment with the highest seq, or
// an empty name if there is none.
func (helper *Helper) LatestArchive(deployment string) (maxSeq uint64, maxName string, err error) {
	svc := s3.New(helper.session)
	prefix := deployment + "/"
	input := &s3.ListObjectsInput{
		Bucket:  &helper.bucket,
		Prefix:  &prefix,
		MaxKeys: aws.Int64(500),
	}
	err = svc.ListObjectsPages(input, func(page *s3.ListObjectsOutput, _ bool) bool {
		for _, item := range page.Contents {
			name := aws.StringValue(item.Key)
			seq, perr := SeqFromName(name)
			if perr != nil {
				continue
			}
			if maxName == "" || seq > maxSeq {
				maxSeq = seq
				maxName = name
			}
		}
		return true
	})
	if err != nil {
		var awsErr awserr.Error
		if errors.As(err, &awsErr) {
			err = awsErr
		}
	}
	return
}

// DownloadArchive downloads the archive called name into writer.
func (helper *Helper) DownloadArchive(name string, writer io.WriterAt) error {
	downloader := s3manager.NewDownloader(helper.session)
	_, err := downloader.Download(writer,
		&s3.GetObjectInput{
			Bucket: &helper.bucket,
			Key:    aws.String(name),
		})
	return err
}
