package record

import "errors"

var ErrFormat = errors.New("malformed record block")

var ErrDeleted = errors.New("record block is marked as deleted")

var ErrShortBlock = errors.New("truncated record block")

var ErrMarkOutOfRange = errors.New("average mark does not fit into 96 bits")
