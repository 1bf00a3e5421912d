package destinations

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// BinaryVersion is the current binary index layout version.
const BinaryVersion = 1

// ErrChecksum is returned when a binary index fails its integrity check.
var ErrChecksum = errors.New("destination index checksum mismatch")

// binaryIndex is the on-disk envelope. Block holds the msgpack encoded
// record list so the checksum can be computed over the exact bytes.
type binaryIndex struct {
	Version int    `msgpack:"v"`
	Count   int    `msgpack:"n"`
	Sum     uint64 `msgpack:"sum"`
	Block   []byte `msgpack:"r"`
}

// IndexInfo describes a binary index without preparing it.
type IndexInfo struct {
	Version  int
	Count    int
	Checksum uint64
	Size     int
}

// WriteBinary encodes records as a binary index.
func WriteBinary(w io.Writer, records []Record) error {
	block, err := msgpack.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	env := binaryIndex{
		Version: BinaryVersion,
		Count:   len(records),
		Sum:     xxhash.Sum64(block),
		Block:   block,
	}
	return msgpack.NewEncoder(w).Encode(&env)
}

// WriteBinaryFile writes records to path as a binary index.
func WriteBinaryFile(path string, records []Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := WriteBinary(writer, records); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	return file.Close()
}

// ReadBinary decodes and verifies a binary index.
func ReadBinary(r io.Reader) ([]Record, error) {
	env, err := readEnvelope(r)
	if err != nil {
		return nil, err
	}

	var records []Record
	if err := msgpack.Unmarshal(env.Block, &records); err != nil {
		return nil, fmt.Errorf("failed to decode record block: %w", err)
	}
	if len(records) != env.Count {
		return nil, fmt.Errorf("record count mismatch: header says %d, block has %d", env.Count, len(records))
	}
	return records, nil
}

// ReadBinaryFile reads a binary index from path.
func ReadBinaryFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadBinary(bufio.NewReader(file))
}

// InspectBinary reads only the envelope of a binary index and verifies its checksum.
func InspectBinary(r io.Reader) (IndexInfo, error) {
	env, err := readEnvelope(r)
	if err != nil {
		return IndexInfo{}, err
	}
	return IndexInfo{
		Version:  env.Version,
		Count:    env.Count,
		Checksum: env.Sum,
		Size:     len(env.Block),
	}, nil
}

func readEnvelope(r io.Reader) (*binaryIndex, error) {
	var env binaryIndex
	if err := msgpack.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to read index header: %w", err)
	}
	if env.Version != BinaryVersion {
		return nil, fmt.Errorf("unsupported index version %d (want %d)", env.Version, BinaryVersion)
	}
	if env.Count < 0 {
		return nil, fmt.Errorf("invalid record count %d", env.Count)
	}
	if sum := xxhash.Sum64(env.Block); sum != env.Sum {
		return nil, fmt.Errorf("%w: header %016x, computed %016x", ErrChecksum, env.Sum, sum)
	}
	return &env, nil
}
