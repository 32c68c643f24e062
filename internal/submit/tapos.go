package submit

import (
	"encoding/binary"
	"fmt"

	eos "github.com/eoscanada/eos-go"
)

// ReferenceBlock derives the TAPOS fields from a head block id:
// ref_block_num is the low 16 bits of the block number (the id's first four
// bytes, big-endian) and ref_block_prefix is bytes 8-12 of the id read
// little-endian. The chain's reference-block check rejects the transaction
// unless this derivation matches bit for bit.
func ReferenceBlock(blockID eos.Checksum256) (refBlockNum uint16, refBlockPrefix uint32, err error) {
	if len(blockID) < 12 {
		return 0, 0, fmt.Errorf("block id too short: %d bytes", len(blockID))
	}
	refBlockNum = uint16(binary.BigEndian.Uint32(blockID[:4]))
	refBlockPrefix = binary.LittleEndian.Uint32(blockID[8:12])
	return refBlockNum, refBlockPrefix, nil
}
