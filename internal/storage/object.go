package storage

import (
	"fmt"
	"path"
	"strings"
)

const Scheme = "s3://"

// Object addresses one key in one bucket.
type Object struct {
	Bucket string
	Key    string
}

func (o Object) String() string {
	return Scheme + o.Bucket + "/" + o.Key
}

// IsObjectURL reports whether raw uses the s3:// scheme.
func IsObjectURL(raw string) bool {
	return strings.HasPrefix(strings.ToLower(raw), Scheme)
}

// ParseObjectURL splits s3://bucket/key. The key is cleaned like a
// slash-separated path and may not be empty.
func ParseObjectURL(raw string) (Object, error) {
	if !IsObjectURL(raw) {
		return Object{}, fmt.Errorf("not an object url: %s", raw)
	}
	rest := raw[len(Scheme):]
	bucket, key, _ := strings.Cut(rest, "/")
	key = strings.TrimPrefix(path.Clean("/"+key), "/")
	if bucket == "" || key == "" {
		return Object{}, fmt.Errorf("object url must look like s3://bucket/key: %s", raw)
	}
	return Object{Bucket: bucket, Key: key}, nil
}
