// Package abi derives go-ethereum ABI types from Go structs, so the Go message types are the single
// description of the tuples sent to the EVM router.
package abi

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/rotisserie/eris"
)

const (
	bigIntStructTag = "evm"
	nameStructTag   = "abi"
)

var (
	hasNumbers = regexp.MustCompile(`\d+`)
)

// GenerateABIType returns the tuple type of goStruct. Field names become lowerCamel component
// names unless overridden with an `abi` tag; *big.Int fields must name their width with an `evm` tag.
func GenerateABIType(goStruct any) (*abi.Type, error) {
	rt := reflect.TypeOf(goStruct)
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, eris.Errorf("expected input to be of type struct, got %T", goStruct)
	}
	args, err := getArgumentsForType(rt)
	if err != nil {
		return nil, err
	}
	at, err := abi.NewType("tuple", "", args)
	if err != nil {
		return nil, eris.Wrap(err, "failed to build tuple type")
	}
	return &at, nil
}

// GenerateArguments wraps the tuple type of goStruct as a single named argument, the shape of
// abi.encode(struct) and of a struct parameter in calldata.
func GenerateArguments(name string, goStruct any) (abi.Arguments, error) {
	at, err := GenerateABIType(goStruct)
	if err != nil {
		return nil, err
	}
	return abi.Arguments{{Name: name, Type: *at}}, nil
}

// MustGenerateArguments is GenerateArguments for package-level declarations.
func MustGenerateArguments(name string, goStruct any) abi.Arguments {
	args, err := GenerateArguments(name, goStruct)
	if err != nil {
		panic(err)
	}
	return args
}

func getArgumentsForType(rt reflect.Type) ([]abi.ArgumentMarshaling, error) {
	args := make([]abi.ArgumentMarshaling, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		kind := field.Type.Kind()
		fieldType := field.Type.String()
		fieldName := componentName(field)

		// handle the special case for slice of struct fields.
		if kind == reflect.Slice && field.Type.Elem().Kind() == reflect.Struct {
			arg, err := goStructToEVMStruct(field.Type.Elem(), fieldName)
			if err != nil {
				return nil, err
			}
			arg.Type = "tuple[]"
			args = append(args, arg)
			continue
		}

		// common.Address is an array, but every other struct is a nested tuple.
		if kind == reflect.Struct {
			arg, err := goStructToEVMStruct(field.Type, fieldName)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			continue
		}

		solType, err := goTypeToSolidityType(fieldType, field.Tag.Get(bigIntStructTag))
		if err != nil {
			return nil, eris.Wrapf(err, "field %s", field.Name)
		}
		args = append(args, abi.ArgumentMarshaling{
			Name: fieldName,
			Type: solType,
		})
	}
	return args, nil
}

func componentName(field reflect.StructField) string {
	if name := field.Tag.Get(nameStructTag); name != "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(field.Name)
	return string(unicode.ToLower(r)) + field.Name[size:]
}

func goStructToEVMStruct(p reflect.Type, fieldName string) (abi.ArgumentMarshaling, error) {
	components, err := getArgumentsForType(p)
	if err != nil {
		return abi.ArgumentMarshaling{}, err
	}
	return abi.ArgumentMarshaling{
		Name:       fieldName,
		Type:       "tuple",
		Components: components,
	}, nil
}

func goTypeToSolidityType(t string, tag string) (string, error) {
	// []byte is 'bytes' on the EVM side, not uint8[].
	if t == "[]byte" || t == "[]uint8" {
		return "bytes", nil
	}
	if strings.HasPrefix(t, "[]") {
		inner, err := goTypeToSolidityType(t[2:], tag)
		if err != nil {
			return "", err
		}
		return inner + "[]", nil
	}
	// geth uses *big.Int for integers wider than 64 bits, so the width has to come from the tag.
	if t == "*big.Int" {
		if tag == "" {
			return "", eris.Errorf("when using *big.Int, you MUST use the `%s` struct tag to indicate which "+
				"underlying evm integer type you wish to resolve to (i.e. uint256, int128, etc)", bigIntStructTag)
		}
		return tag, nil
	}

	switch t {
	case "common.Address":
		return "address", nil
	case "common.Hash", "[32]uint8":
		return "bytes32", nil
	case "string", "bool":
		return t, nil
	}

	if !strings.Contains(t, "int") {
		return "", eris.Errorf("unsupported type %s", t)
	}
	// uint/int without a size does not map back from ABI to Go.
	if !hasNumbers.MatchString(t) {
		return "", eris.New("cannot use uint/int without specifying size (i.e. uint64, int8, etc)")
	}
	return t, nil
}
