package db

// WriteTask 一条待落盘的写请求
type WriteTask struct {
	Key   []byte
	Value []byte
	Op    WriteOp // OpSet / OpDelete
}

type WriteOp int

const (
	OpSet WriteOp = iota
	OpDelete
)

func (op WriteOp) String() string {
	if op == OpDelete {
		return "delete"
	}
	return "set"
}
