package lib

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
)

// OSSOptions 阿里云 OSS 连接参数
type OSSOptions struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyId     string
	AccessKeySecret string
	SecurityToken   string
}

// AliOssStorageClient 以阿里云 OSS 作为媒体存储
type AliOssStorageClient struct {
	ossClient     *oss.Client
	ossBucketName string
	ossRegion     string
	ossEndpoint   string
}

var _ BlobStore = (*AliOssStorageClient)(nil)

func parseRegionFromEndpoint(endpoint string) string {
	// endpoint 形如 "oss-cn-hangzhou.aliyuncs.com"，解析出 "cn-hangzhou"
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	if strings.Contains(endpoint, "oss-") && strings.Contains(endpoint, ".aliyuncs.com") {
		start := strings.Index(endpoint, "oss-") + 4
		end := strings.Index(endpoint[start:], ".")
		if end != -1 {
			return endpoint[start : start+end]
		}
	}
	logs.Warnf("failed to parse region from endpoint: %s, using default", endpoint)
	return "cn-hangzhou" // 默认值
}

func NewAliOssStorageClient(opts OSSOptions) (*AliOssStorageClient, error) {
	if opts.AccessKeyId == "" || opts.AccessKeySecret == "" {
		return nil, fmt.Errorf("oss access key is required")
	}
	region := opts.Region
	if region == "" {
		region = parseRegionFromEndpoint(opts.Endpoint)
	}

	cfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKeyId, opts.AccessKeySecret, opts.SecurityToken)).
		WithRegion(region)
	if opts.Endpoint != "" {
		cfg = cfg.WithEndpoint(opts.Endpoint)
	}

	ossStorageClient := &AliOssStorageClient{
		ossClient:     oss.NewClient(cfg),
		ossBucketName: opts.Bucket,
		ossRegion:     region,
		ossEndpoint:   opts.Endpoint,
	}

	logs.Debugf("new oss storage client: bucket=%s region=%s", opts.Bucket, region)
	return ossStorageClient, nil
}

// objectKey OSS 的 bucket 由配置决定，平台 bucket 名不同时作为对象前缀保留
func (a *AliOssStorageClient) objectKey(bucket, path string) string {
	if a.ossBucketName == "" || bucket == "" || bucket == a.ossBucketName {
		return path
	}
	return bucket + "/" + path
}

func (a *AliOssStorageClient) bucket(bucket string) string {
	if a.ossBucketName != "" {
		return a.ossBucketName
	}
	return bucket
}

func (a *AliOssStorageClient) Upload(ctx context.Context, bucket, path, contentType string, body io.Reader, size int64) (string, error) {
	key := a.objectKey(bucket, path)
	putRequest := &oss.PutObjectRequest{
		Bucket:      oss.Ptr(a.bucket(bucket)),
		Key:         oss.Ptr(key),
		ContentType: oss.Ptr(contentType),
		Body:        body,
	}
	if size > 0 {
		putRequest.ContentLength = oss.Ptr(size)
	}

	_, err := a.ossClient.PutObject(ctx, putRequest)
	if err != nil {
		return "", fmt.Errorf("failed to put object %v", err)
	}

	logs.Debugf("put object completed for %s\n", key)
	return fmt.Sprintf(meta.OSSObjectKey, a.bucket(bucket), a.ossRegion, key), nil
}

func (a *AliOssStorageClient) SignURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	result, err := a.ossClient.Presign(ctx, &oss.GetObjectRequest{
		Bucket: oss.Ptr(a.bucket(bucket)),
		Key:    oss.Ptr(a.objectKey(bucket, path)),
	}, oss.PresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %v", err)
	}
	return result.URL, nil
}
