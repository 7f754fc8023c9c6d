package bank

import (
	"bytes"
	"fmt"

	"google.golang.org/protobuf/proto"
)

// unmarshalProtoCompat 第一次解析失败时去掉末尾的 0 字节再试一次
func unmarshalProtoCompat(data []byte, msg proto.Message) error {
	err := proto.Unmarshal(data, msg)
	if err == nil {
		return nil
	}
	trimmed := bytes.TrimRight(data, "\x00")
	if len(trimmed) == 0 || len(trimmed) == len(data) {
		return err
	}
	proto.Reset(msg)
	if err2 := proto.Unmarshal(trimmed, msg); err2 != nil {
		return fmt.Errorf("proto unmarshal failed (raw=%v, trimmed=%v)", err, err2)
	}
	return nil
}
