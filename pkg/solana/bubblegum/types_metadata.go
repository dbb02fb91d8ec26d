package bubblegum

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	MaxNameLength           = 32
	MaxSymbolLength         = 10
	MaxUriLength            = 200
	MaxCreatorLimit         = 5
	MaxSellerFeeBasisPoints = 10000

	// Creator shares are percentages
	TotalCreatorShares = 100
)

var (
	ErrNameTooLong          = errors.New("name too long")
	ErrSymbolTooLong        = errors.New("symbol too long")
	ErrUriTooLong           = errors.New("uri too long")
	ErrTooManyCreators      = errors.New("too many creators")
	ErrInvalidCreatorShares = errors.New("creator shares must sum to 100")
	ErrInvalidSellerFee     = errors.New("seller fee basis points exceed 10000")
)

type TokenStandard uint8

const (
	TokenStandardNonFungible TokenStandard = iota
	TokenStandardFungibleAsset
	TokenStandardFungible
	TokenStandardNonFungibleEdition
)

type TokenProgramVersion uint8

const (
	TokenProgramVersionOriginal TokenProgramVersion = iota
	TokenProgramVersionToken2022
)

type UseMethod uint8

const (
	UseMethodBurn UseMethod = iota
	UseMethodMultiple
	UseMethodSingle
)

type Creator struct {
	Address  ed25519.PublicKey
	Verified bool
	Share    uint8
}

const CreatorSize = (32 + // address
	1 + // verified
	1) // share

type Collection struct {
	Verified bool
	Key      ed25519.PublicKey
}

type Uses struct {
	UseMethod UseMethod
	Remaining uint64
	Total     uint64
}

// MetadataArgs describes a compressed asset. Its borsh encoding is the mint
// instruction payload and the preimage of the leaf data hash.
type MetadataArgs struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	PrimarySaleHappened  bool
	IsMutable            bool
	EditionNonce         *uint8
	TokenStandard        *TokenStandard
	Collection           *Collection
	Uses                 *Uses
	TokenProgramVersion  TokenProgramVersion
	Creators             []Creator
}

// Validate enforces the program's metadata limits.
func (m *MetadataArgs) Validate() error {
	if len(m.Name) > MaxNameLength {
		return errors.Wrapf(ErrNameTooLong, "%d > %d bytes", len(m.Name), MaxNameLength)
	}
	if len(m.Symbol) > MaxSymbolLength {
		return errors.Wrapf(ErrSymbolTooLong, "%d > %d bytes", len(m.Symbol), MaxSymbolLength)
	}
	if len(m.Uri) > MaxUriLength {
		return errors.Wrapf(ErrUriTooLong, "%d > %d bytes", len(m.Uri), MaxUriLength)
	}
	if m.SellerFeeBasisPoints > MaxSellerFeeBasisPoints {
		return ErrInvalidSellerFee
	}
	if len(m.Creators) > MaxCreatorLimit {
		return errors.Wrapf(ErrTooManyCreators, "%d > %d", len(m.Creators), MaxCreatorLimit)
	}

	var total int
	for _, c := range m.Creators {
		if len(c.Address) != ed25519.PublicKeySize {
			return errors.New("invalid creator address")
		}
		total += int(c.Share)
	}
	if total != TotalCreatorShares {
		return errors.Wrapf(ErrInvalidCreatorShares, "got %d", total)
	}

	if m.Collection != nil && len(m.Collection.Key) != ed25519.PublicKeySize {
		return errors.New("invalid collection key")
	}

	return nil
}

func (m *MetadataArgs) Size() int {
	size := 4 + len(m.Name) +
		4 + len(m.Symbol) +
		4 + len(m.Uri) +
		2 + // seller_fee_basis_points
		1 + // primary_sale_happened
		1 + // is_mutable
		1 + // edition_nonce option
		1 + // token_standard option
		1 + // collection option
		1 + // uses option
		1 + // token_program_version
		4 + len(m.Creators)*CreatorSize

	if m.EditionNonce != nil {
		size += 1
	}
	if m.TokenStandard != nil {
		size += 1
	}
	if m.Collection != nil {
		size += 1 + 32
	}
	if m.Uses != nil {
		size += 1 + 8 + 8
	}
	return size
}

// Marshal returns the borsh encoding of the metadata.
func (m *MetadataArgs) Marshal() []byte {
	var offset int
	data := make([]byte, m.Size())
	putMetadataArgs(data, m, &offset)
	return data
}

func (m *MetadataArgs) Unmarshal(data []byte) error {
	var offset int
	if !getMetadataArgs(data, m, &offset) {
		return ErrInvalidInstructionData
	}
	if offset != len(data) {
		return ErrInvalidInstructionData
	}
	return nil
}

// DataHash is keccak(keccak(borsh(metadata)) || seller_fee_basis_points LE).
func (m *MetadataArgs) DataHash() Hash {
	argsHash := keccak(m.Marshal())

	fee := make([]byte, 2)
	binary.LittleEndian.PutUint16(fee, m.SellerFeeBasisPoints)

	return keccak(argsHash[:], fee)
}

// CreatorHash is keccak over each creator's address, verified flag and share.
func (m *MetadataArgs) CreatorHash() Hash {
	var offset int
	data := make([]byte, len(m.Creators)*CreatorSize)
	for _, c := range m.Creators {
		putCreator(data, &c, &offset)
	}
	return keccak(data)
}

func putMetadataArgs(dst []byte, v *MetadataArgs, offset *int) {
	putString(dst, v.Name, offset)
	putString(dst, v.Symbol, offset)
	putString(dst, v.Uri, offset)
	putUint16(dst, v.SellerFeeBasisPoints, offset)
	putBool(dst, v.PrimarySaleHappened, offset)
	putBool(dst, v.IsMutable, offset)

	putBool(dst, v.EditionNonce != nil, offset)
	if v.EditionNonce != nil {
		putUint8(dst, *v.EditionNonce, offset)
	}

	putBool(dst, v.TokenStandard != nil, offset)
	if v.TokenStandard != nil {
		putUint8(dst, uint8(*v.TokenStandard), offset)
	}

	putBool(dst, v.Collection != nil, offset)
	if v.Collection != nil {
		putBool(dst, v.Collection.Verified, offset)
		putKey(dst, v.Collection.Key, offset)
	}

	putBool(dst, v.Uses != nil, offset)
	if v.Uses != nil {
		putUint8(dst, uint8(v.Uses.UseMethod), offset)
		putUint64(dst, v.Uses.Remaining, offset)
		putUint64(dst, v.Uses.Total, offset)
	}

	putUint8(dst, uint8(v.TokenProgramVersion), offset)

	putUint32(dst, uint32(len(v.Creators)), offset)
	for i := range v.Creators {
		putCreator(dst, &v.Creators[i], offset)
	}
}

func getMetadataArgs(src []byte, dst *MetadataArgs, offset *int) bool {
	if !getString(src, &dst.Name, offset) ||
		!getString(src, &dst.Symbol, offset) ||
		!getString(src, &dst.Uri, offset) {
		return false
	}

	// fee + sale + mutable + edition option tag
	if len(src) < *offset+5 {
		return false
	}
	getUint16(src, &dst.SellerFeeBasisPoints, offset)
	getBool(src, &dst.PrimarySaleHappened, offset)
	getBool(src, &dst.IsMutable, offset)

	var present bool
	getBool(src, &present, offset)
	if present {
		if len(src) < *offset+1 {
			return false
		}
		var nonce uint8
		getUint8(src, &nonce, offset)
		dst.EditionNonce = &nonce
	}

	if len(src) < *offset+1 {
		return false
	}
	getBool(src, &present, offset)
	if present {
		if len(src) < *offset+1 {
			return false
		}
		var standard uint8
		getUint8(src, &standard, offset)
		tokenStandard := TokenStandard(standard)
		dst.TokenStandard = &tokenStandard
	}

	if len(src) < *offset+1 {
		return false
	}
	getBool(src, &present, offset)
	if present {
		if len(src) < *offset+1+ed25519.PublicKeySize {
			return false
		}
		var collection Collection
		getBool(src, &collection.Verified, offset)
		getKey(src, &collection.Key, offset)
		dst.Collection = &collection
	}

	if len(src) < *offset+1 {
		return false
	}
	getBool(src, &present, offset)
	if present {
		if len(src) < *offset+1+8+8 {
			return false
		}
		var uses Uses
		var method uint8
		getUint8(src, &method, offset)
		uses.UseMethod = UseMethod(method)
		getUint64(src, &uses.Remaining, offset)
		getUint64(src, &uses.Total, offset)
		dst.Uses = &uses
	}

	// token program version + creator count
	if len(src) < *offset+1+4 {
		return false
	}
	var version uint8
	getUint8(src, &version, offset)
	dst.TokenProgramVersion = TokenProgramVersion(version)

	var count uint32
	getUint32(src, &count, offset)
	if len(src) < *offset+int(count)*CreatorSize {
		return false
	}
	dst.Creators = make([]Creator, count)
	for i := range dst.Creators {
		getCreator(src, &dst.Creators[i], offset)
	}

	return true
}

func putCreator(dst []byte, v *Creator, offset *int) {
	putKey(dst, v.Address, offset)
	putBool(dst, v.Verified, offset)
	putUint8(dst, v.Share, offset)
}
func getCreator(src []byte, dst *Creator, offset *int) {
	getKey(src, &dst.Address, offset)
	getBool(src, &dst.Verified, offset)
	getUint8(src, &dst.Share, offset)
}
