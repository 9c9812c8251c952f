package identity

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	profileDirName  = ".touch-race"
	profileFileName = "profile.yaml"
)

// Profile 本地保存的玩家昵称和形象
type Profile struct {
	Name string `yaml:"name"`
	Char string `yaml:"char"`
}

func profilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, profileDirName, profileFileName), nil
}

// LoadProfile 读取本地玩家档案
// 文件不存在或内容非法时返回随机生成的档案
func LoadProfile() Profile {
	fallback := Profile{Name: GenerateNickname(), Char: RandomChar()}

	path, err := profilePath()
	if err != nil {
		return fallback
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fallback
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fallback
	}
	if p.Name == "" || !ValidChar(p.Char) {
		return fallback
	}
	return p
}

// SaveProfile 持久化玩家档案到用户目录
func SaveProfile(p Profile) error {
	path, err := profilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
