package errs

// 容器错误根类型
var ContainerError = newClass("ContainerError", nil)

// Add 的目标键已有覆盖值，改用 Set 可覆盖
var DuplicateKeyError = newClass("DuplicateKey", ContainerError)

// 受保护的遍历过程中容器被修改，重新遍历即可恢复
var ConcurrentModificationError = newClass("ConcurrentModification", ContainerError)

// 键不属于容器声明的键域
var UndefinedKeyError = newClass("UndefinedKey", ContainerError)

// 批量操作参数无效，在产生任何副作用之前报告
var InvalidParamError = newClass("InvalidParam", ContainerError)

// 快照存取失败，诱因错误可通过 Cause 获取
var SnapshotError = newClass("Snapshot", ContainerError)
