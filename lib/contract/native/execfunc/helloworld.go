package execfunc

import (
	stderrors "errors"

	"boscoin.io/sctester/lib/common"
	"boscoin.io/sctester/lib/contract/api"
	"boscoin.io/sctester/lib/contract/native"
	"boscoin.io/sctester/lib/errors"
)

var HelloWorld = "helloworld"

var greetersKey = []byte("greeters")

func init() {
	native.AddContract(HelloWorld, RegisterHelloWorld)
}

func RegisterHelloWorld(ex *native.NativeExecutor) {
	ex.RegisterFunc("main", hello)
	ex.RegisterFunc("greet", greet)
}

func hello(ex *native.NativeExecutor, host api.Interface, param string) error {
	host.Print("hello world")
	return nil
}

// greet appends `param` to the greeters kept in the datastore of the current
// address.
func greet(ex *native.NativeExecutor, host api.Interface, param string) error {
	var greeters []string

	b, err := host.GetData(greetersKey)
	if err != nil && !stderrors.Is(err, errors.DataNotFound) {
		return err
	} else if err == nil {
		if err = common.DecodeJSONValue(b, &greeters); err != nil {
			return err
		}
	}

	greeters = append(greeters, param)
	if b, err = common.EncodeJSONValue(greeters); err != nil {
		return err
	}
	if err = host.SetData(greetersKey, b); err != nil {
		return err
	}

	host.GenerateEvent("greeted " + param)

	return nil
}
