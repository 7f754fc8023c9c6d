package tokenfactory

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// ========== tokenfactory 协议消息（osmosis.tokenfactory.v1beta1） ==========
// 描述符按链上 proto 定义构造，编解码交给 protobuf 运行时

const (
	coinPackage = "cosmos.base.v1beta1"
	txPackage   = "osmosis.tokenfactory.v1beta1"
)

const (
	TypeURLMsgCreateDenom = "/" + txPackage + ".MsgCreateDenom"
	TypeURLMsgMint        = "/" + txPackage + ".MsgMint"
)

var (
	coinDesc        protoreflect.MessageDescriptor
	createDenomDesc protoreflect.MessageDescriptor
	mintDesc        protoreflect.MessageDescriptor
)

// 字段顺序固定，保证同一条消息的字节稳定
var marshalOpts = proto.MarshalOptions{Deterministic: true}

func init() {
	files := new(protoregistry.Files)

	coinFile, err := protodesc.NewFile(coinFileProto(), files)
	if err != nil {
		panic(fmt.Sprintf("tokenfactory: build %s descriptor: %v", coinPackage, err))
	}
	if err := files.RegisterFile(coinFile); err != nil {
		panic(fmt.Sprintf("tokenfactory: register %s: %v", coinPackage, err))
	}
	txFile, err := protodesc.NewFile(txFileProto(), files)
	if err != nil {
		panic(fmt.Sprintf("tokenfactory: build %s descriptor: %v", txPackage, err))
	}

	coinDesc = coinFile.Messages().ByName("Coin")
	createDenomDesc = txFile.Messages().ByName("MsgCreateDenom")
	mintDesc = txFile.Messages().ByName("MsgMint")
}

func coinFileProto() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("cosmos/base/v1beta1/coin.proto"),
		Package: proto.String(coinPackage),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Coin"),
			Field: []*descriptorpb.FieldDescriptorProto{
				stringField("denom", 1),
				stringField("amount", 2),
			},
		}},
	}
}

func txFileProto() *descriptorpb.FileDescriptorProto {
	amount := &descriptorpb.FieldDescriptorProto{
		Name:     proto.String("amount"),
		Number:   proto.Int32(2),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
		TypeName: proto.String("." + coinPackage + ".Coin"),
	}
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String("osmosis/tokenfactory/v1beta1/tx.proto"),
		Package:    proto.String(txPackage),
		Syntax:     proto.String("proto3"),
		Dependency: []string{"cosmos/base/v1beta1/coin.proto"},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("MsgCreateDenom"),
				Field: []*descriptorpb.FieldDescriptorProto{
					stringField("sender", 1),
					stringField("subdenom", 2),
				},
			},
			{
				Name: proto.String("MsgMint"),
				Field: []*descriptorpb.FieldDescriptorProto{
					stringField("sender", 1),
					amount,
					stringField("mint_to_address", 3),
				},
			},
		},
	}
}

func stringField(name string, num int32) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(num),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
	}
}

// Coin cosmos.base.v1beta1.Coin
type Coin struct {
	Denom  string
	Amount string
}

// MsgCreateDenom 注册 factory/<sender>/<subdenom>
type MsgCreateDenom struct {
	Sender   string
	Subdenom string
}

// MsgMint 向 MintToAddress 增发 Amount
type MsgMint struct {
	Sender        string
	Amount        *Coin
	MintToAddress string
}

func (c *Coin) Marshal() ([]byte, error) {
	return marshalDynamic(coinDesc, c.fill)
}

func (c *Coin) Unmarshal(data []byte) error {
	return unmarshalDynamic(coinDesc, data, c.load)
}

func (c *Coin) fill(m protoreflect.Message) {
	setString(m, "denom", c.Denom)
	setString(m, "amount", c.Amount)
}

func (c *Coin) load(m protoreflect.Message) {
	c.Denom = getString(m, "denom")
	c.Amount = getString(m, "amount")
}

func (m *MsgCreateDenom) Marshal() ([]byte, error) {
	return marshalDynamic(createDenomDesc, m.fill)
}

func (m *MsgCreateDenom) Unmarshal(data []byte) error {
	return unmarshalDynamic(createDenomDesc, data, m.load)
}

func (m *MsgCreateDenom) fill(pm protoreflect.Message) {
	setString(pm, "sender", m.Sender)
	setString(pm, "subdenom", m.Subdenom)
}

func (m *MsgCreateDenom) load(pm protoreflect.Message) {
	m.Sender = getString(pm, "sender")
	m.Subdenom = getString(pm, "subdenom")
}

func (m *MsgMint) Marshal() ([]byte, error) {
	return marshalDynamic(mintDesc, m.fill)
}

func (m *MsgMint) Unmarshal(data []byte) error {
	return unmarshalDynamic(mintDesc, data, m.load)
}

func (m *MsgMint) fill(pm protoreflect.Message) {
	setString(pm, "sender", m.Sender)
	if m.Amount != nil {
		fd := pm.Descriptor().Fields().ByName("amount")
		m.Amount.fill(pm.Mutable(fd).Message())
	}
	setString(pm, "mint_to_address", m.MintToAddress)
}

func (m *MsgMint) load(pm protoreflect.Message) {
	m.Sender = getString(pm, "sender")
	m.Amount = nil
	if fd := pm.Descriptor().Fields().ByName("amount"); pm.Has(fd) {
		coin := &Coin{}
		coin.load(pm.Get(fd).Message())
		m.Amount = coin
	}
	m.MintToAddress = getString(pm, "mint_to_address")
}

func marshalDynamic(desc protoreflect.MessageDescriptor, fill func(protoreflect.Message)) ([]byte, error) {
	msg := dynamicpb.NewMessage(desc)
	fill(msg)
	b, err := marshalOpts.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", desc.FullName(), err)
	}
	return b, nil
}

// unmarshalDynamic 未知字段保留在动态消息里，不影响已知字段
func unmarshalDynamic(desc protoreflect.MessageDescriptor, data []byte, load func(protoreflect.Message)) error {
	msg := dynamicpb.NewMessage(desc)
	if err := proto.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %s: %w", desc.FullName(), err)
	}
	load(msg)
	return nil
}

// setString proto3 空字符串不上线
func setString(m protoreflect.Message, name protoreflect.Name, s string) {
	if s == "" {
		return
	}
	m.Set(m.Descriptor().Fields().ByName(name), protoreflect.ValueOfString(s))
}

func getString(m protoreflect.Message, name protoreflect.Name) string {
	return m.Get(m.Descriptor().Fields().ByName(name)).String()
}
