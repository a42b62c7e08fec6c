// SPDX-License-Identifier: MPL-2.0

//go:build windows

package registry

import (
	"errors"
	"fmt"

	winreg "golang.org/x/sys/windows/registry"
)

type windowsBackend struct{}

func newBackend() backend { return windowsBackend{} }

func rootKey(h Hive) (winreg.Key, error) {
	switch h {
	case HiveCurrentUser:
		return winreg.CURRENT_USER, nil
	case HiveLocalMachine:
		return winreg.LOCAL_MACHINE, nil
	case HiveClassesRoot:
		return winreg.CLASSES_ROOT, nil
	case HiveUsers:
		return winreg.USERS, nil
	case HiveCurrentConfig:
		return winreg.CURRENT_CONFIG, nil
	case HivePerformanceData:
		return winreg.PERFORMANCE_DATA, nil
	default:
		return 0, fmt.Errorf("unknown hive %s", h)
	}
}

func (windowsBackend) SetValue(k Key, name string, v Value) error {
	root, err := rootKey(k.Hive)
	if err != nil {
		return err
	}
	key, _, err := winreg.CreateKey(root, k.Path, winreg.SET_VALUE)
	if err != nil {
		return err
	}
	defer func() { _ = key.Close() }()

	switch v.Type {
	case TypeDWord:
		return key.SetDWordValue(name, v.DWord)
	case TypeQWord:
		return key.SetQWordValue(name, v.QWord)
	case TypeString:
		return key.SetStringValue(name, v.String)
	default:
		return fmt.Errorf("unsupported value type %q", v.Type)
	}
}

func (windowsBackend) DeleteValue(k Key, name string) error {
	root, err := rootKey(k.Hive)
	if err != nil {
		return err
	}
	key, err := winreg.OpenKey(root, k.Path, winreg.SET_VALUE)
	if errors.Is(err, winreg.ErrNotExist) {
		return keyNotFound(k)
	}
	if err != nil {
		return err
	}
	defer func() { _ = key.Close() }()

	if err := key.DeleteValue(name); err != nil && !errors.Is(err, winreg.ErrNotExist) {
		return err
	}
	return nil
}

// DeleteKey removes k. A missing key is not an error.
func (windowsBackend) DeleteKey(k Key, recursive bool) error {
	root, err := rootKey(k.Hive)
	if err != nil {
		return err
	}
	if recursive {
		err = deleteTree(root, k.Path)
	} else {
		err = winreg.DeleteKey(root, k.Path)
	}
	if errors.Is(err, winreg.ErrNotExist) {
		return nil
	}
	return err
}

func deleteTree(root winreg.Key, path string) error {
	key, err := winreg.OpenKey(root, path, winreg.ENUMERATE_SUB_KEYS|winreg.QUERY_VALUE)
	if err != nil {
		return err
	}
	names, err := key.ReadSubKeyNames(-1)
	_ = key.Close()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := deleteTree(root, path+`\`+name); err != nil && !errors.Is(err, winreg.ErrNotExist) {
			return err
		}
	}
	return winreg.DeleteKey(root, path)
}
