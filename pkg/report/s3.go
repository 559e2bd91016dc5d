// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/cobaltcore-dev/osdscan/pkg/scanner"
)

// S3Config holds the target for report uploads. Endpoint may point at any
// S3-compatible store, RGW included; an empty endpoint means plain AWS.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	KeyPrefix string
}

// ObjectKey derives the upload key for a scan: <prefix>/<hostname>/<scan-id>.json.
func (c S3Config) ObjectKey(result *scanner.ScanResult) string {
	return path.Join(c.KeyPrefix, result.Hostname, result.ScanID+".json")
}

// UploadJSON renders the scan as JSON and uploads it in one shot.
func UploadJSON(ctx context.Context, cfg S3Config, result *scanner.ScanResult) error {
	if cfg.Bucket == "" {
		return fmt.Errorf("s3 bucket not set")
	}

	region := cfg.Region
	if region == "" {
		region = "default"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return fmt.Errorf("error loading s3 configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// RGW and most non-AWS stores want path-style addressing.
			o.UsePathStyle = true
		}
	})

	var body bytes.Buffer
	if err := WriteJSON(&body, result); err != nil {
		return err
	}

	key := cfg.ObjectKey(result)
	uploader := manager.NewUploader(client)
	if _, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(cfg.Bucket),
		Key:         aws.String(key),
		Body:        &body,
		ContentType: aws.String("application/json"),
	}); err != nil {
		return fmt.Errorf("error uploading report to s3: %w", err)
	}

	log.Info().Str("bucket", cfg.Bucket).Str("key", key).Msg("Report uploaded to S3")
	return nil
}
