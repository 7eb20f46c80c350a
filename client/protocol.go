package client

import (
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// MsgType 消息类型（二进制 WebSocket 帧中的信封）
type MsgType uint8

const (
	// 服务端 → 客户端
	MsgSnapshot   MsgType = 0x01
	MsgTuning     MsgType = 0x02
	MsgDummyState MsgType = 0x03
	MsgReady      MsgType = 0x04

	// 客户端 → 服务端
	MsgInput MsgType = 0x10
	MsgInfo  MsgType = 0x11
)

// Envelope 统一信封：类型 + 原始负载
type Envelope struct {
	T MsgType            `msgpack:"t"`
	P msgpack.RawMessage `msgpack:"p"`
}

// TuningMessage 某个区域的物理参数
type TuningMessage struct {
	Zone   int          `msgpack:"zone"`
	Params TuningParams `msgpack:"params"`
}

// DummyStateMessage dummy 连接状态变化
type DummyStateMessage struct {
	Connected bool `msgpack:"connected"`
}

// InputMessage 某个连接在某个 Tick 的输入
type InputMessage struct {
	Slot  int   `msgpack:"slot"`
	Tick  int   `msgpack:"tick"`
	Input Input `msgpack:"input"`
}

// InfoMessage 身份声明；Start 为连接后的首次声明
type InfoMessage struct {
	Slot     int      `msgpack:"slot"`
	Start    bool     `msgpack:"start"`
	Identity Identity `msgpack:"identity"`
}

// Encode 编码信封
func Encode(t MsgType, payload any) ([]byte, error) {
	if payload == nil {
		return nil, errors.Errorf("encode nil payload for type %#x", t)
	}
	pb, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "encode payload %#x", t)
	}
	return msgpack.Marshal(Envelope{T: t, P: pb})
}

// DecodeEnvelope 解码信封
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, errors.New("decode envelope: empty frame")
	}
	var e Envelope
	if err := msgpack.Unmarshal(b, &e); err != nil {
		return Envelope{}, errors.Wrap(err, "decode envelope")
	}
	return e, nil
}

// DecodePayload 解码信封负载为具体类型
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, errors.Errorf("empty payload for type %#x", env.T)
	}
	if err := msgpack.Unmarshal(env.P, &out); err != nil {
		return out, errors.Wrapf(err, "decode payload %#x", env.T)
	}
	return out, nil
}
