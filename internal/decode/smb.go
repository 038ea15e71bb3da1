package decode

import (
	"github.com/DrJosh9000/capview/internal/byteio"
	"github.com/DrJosh9000/capview/internal/registry"
)

// smbMagic is the 4-byte SMB/CIFS protocol signature ("\xffSMB").
var smbMagic = [4]byte{0xFF, 'S', 'M', 'B'}

// SMBHeader is the decoded legacy (non-SMB2) SMB header (spec §4.5).
type SMBHeader struct {
	Command byte
	Status  uint32
	Flags   byte
	Flags2  uint16
	TreeID  uint16
	UserID  uint16
}

// SMBHandler decodes the legacy SMB header.
type SMBHandler struct{}

// Decode implements registry.Handler.
func (SMBHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	c := byteio.NewCursor(buf)
	magic, err := c.Bytes(4)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "smb: truncated signature"
	}
	if [4]byte(magic) != smbMagic {
		return nil, registry.Next{}, registry.DecodeErr, "smb: bad protocol signature"
	}
	cmd, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "smb: truncated command"
	}
	status, err := c.U32BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "smb: truncated status"
	}
	flags, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "smb: truncated flags"
	}
	flags2, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "smb: truncated flags2"
	}
	if err := c.Skip(12); err != nil { // PIDHigh(2) + SecurityFeatures(8) + Reserved(2)
		return nil, registry.Next{}, registry.Truncated, "smb: truncated reserved section"
	}
	treeID, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "smb: truncated tree id"
	}
	if err := c.Skip(2); err != nil { // PIDLow
		return nil, registry.Next{}, registry.Truncated, "smb: truncated process id"
	}
	userID, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "smb: truncated user id"
	}

	h := &SMBHeader{Command: cmd, Status: status, Flags: flags, Flags2: flags2, TreeID: treeID, UserID: userID}
	return h, registry.Next{}, registry.NoErr, ""
}
