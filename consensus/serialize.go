package consensus

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/meridian-dag/consensus/hash"
)

// wireVersion is the 4-byte version prefix of the on-wire/on-disk format
// (spec §6). Modeled on the teacher's wire.MsgBlock encode/decode style
// (length-prefixed variable fields, fixed-order header).
const wireVersion uint32 = 1

// Serialize encodes block in the deterministic format of spec §6: a
// version, the header fields in fixed order, then the transaction list.
func Serialize(block *Block) ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, wireVersion); err != nil {
		return nil, err
	}

	h := block.Header
	buf.Write(h.Hash[:])
	buf.Write(h.SelectedParent[:])

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(h.MergeParents))); err != nil {
		return nil, err
	}
	for _, mp := range h.MergeParents {
		buf.Write(mp[:])
	}

	if err := binary.Write(&buf, binary.LittleEndian, h.Height); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, h.Timestamp); err != nil {
		return nil, err
	}

	if err := writeBytes(&buf, h.Proposer); err != nil {
		return nil, err
	}
	if err := writeBytes(&buf, h.VRFProof); err != nil {
		return nil, err
	}

	buf.Write(h.StateRoot[:])
	buf.Write(h.TxRoot[:])
	buf.Write(h.ReceiptRoot[:])

	if err := writeBytes(&buf, h.Signature); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(block.Transactions))); err != nil {
		return nil, err
	}
	for _, tx := range block.Transactions {
		if err := writeBytes(&buf, tx); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// Deserialize parses the format produced by Serialize. It does not verify
// that the encoded hash field is consistent with the remaining fields —
// callers that need that guarantee should use Engine.Ingest, which
// recomputes the hash as part of structural validation (spec §6, §8).
func Deserialize(data []byte) (*Block, error) {
	r := bytes.NewReader(data)

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != wireVersion {
		return nil, newErrorf(ErrInvalidStructure, "unsupported wire version %d", version)
	}

	var h BlockHeader
	if err := readHash(r, &h.Hash); err != nil {
		return nil, err
	}
	if err := readHash(r, &h.SelectedParent); err != nil {
		return nil, err
	}

	var mergeCount uint32
	if err := binary.Read(r, binary.LittleEndian, &mergeCount); err != nil {
		return nil, err
	}
	h.MergeParents = make([]Hash, mergeCount)
	for i := range h.MergeParents {
		if err := readHash(r, &h.MergeParents[i]); err != nil {
			return nil, err
		}
	}

	if err := binary.Read(r, binary.LittleEndian, &h.Height); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &h.Timestamp); err != nil {
		return nil, err
	}

	proposer, err := readBytes(r)
	if err != nil {
		return nil, err
	}
	h.Proposer = PublicKey(proposer)

	h.VRFProof, err = readBytes(r)
	if err != nil {
		return nil, err
	}

	if err := readHash(r, &h.StateRoot); err != nil {
		return nil, err
	}
	if err := readHash(r, &h.TxRoot); err != nil {
		return nil, err
	}
	if err := readHash(r, &h.ReceiptRoot); err != nil {
		return nil, err
	}

	h.Signature, err = readBytes(r)
	if err != nil {
		return nil, err
	}

	var txCount uint32
	if err := binary.Read(r, binary.LittleEndian, &txCount); err != nil {
		return nil, err
	}
	txs := make([][]byte, txCount)
	for i := range txs {
		txs[i], err = readBytes(r)
		if err != nil {
			return nil, err
		}
	}

	return &Block{Header: h, Transactions: txs}, nil
}

func writeBytes(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func readHash(r io.Reader, h *Hash) error {
	_, err := io.ReadFull(r, h[:])
	return err
}

// RecomputeHash derives the hash field from every other header field,
// using hasher (spec §6: "MUST equal a 32-byte cryptographic hash of all
// header fields excluding the hash itself").
func RecomputeHash(header *BlockHeader, hasher hash.Hasher) (Hash, error) {
	withoutHash := *header
	withoutHash.Hash = Hash{}
	block := &Block{Header: withoutHash}
	data, err := Serialize(block)
	if err != nil {
		return Hash{}, err
	}
	return hasher.Sum(data), nil
}
